package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CallerKey is the echo context key holding the authenticated account id.
const CallerKey = "caller"

var errNoCaller = errors.New("no authenticated caller")

// Claims: Subject carries the 32-hex account id.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for account, valid for ttl.
func IssueToken(secret []byte, account string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(secret []byte, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// JWTAuth rejects requests without a valid bearer token and stores the
// token subject as the caller.
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			parts := strings.Split(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
			}
			claims, err := parseToken(secret, parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if !reHex32.MatchString(claims.Subject) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token subject"})
			}
			c.Set(CallerKey, claims.Subject)
			return next(c)
		}
	}
}

// CallerFrom returns the account set by JWTAuth.
func CallerFrom(c echo.Context) (string, error) {
	v, ok := c.Get(CallerKey).(string)
	if !ok || v == "" {
		return "", errNoCaller
	}
	return v, nil
}
