// Command tokengen prints a bearer token for an account, signed with JWT_SECRET.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	mw "collateral-lending/internal/adapter/middleware"
	"collateral-lending/internal/config"
	"collateral-lending/pkg/id"
)

var reAccount = regexp.MustCompile(`^[a-f0-9]{32}$`)

func main() {
	cfg := config.Load()
	if err := run(flag.CommandLine, os.Args[1:], []byte(cfg.JWTSecret), os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("tokengen")
	}
}

func run(fs *flag.FlagSet, args []string, secret []byte, out io.Writer) error {
	account := fs.String("account", "", "32-hex account id (random when empty)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(secret) == 0 {
		return errors.New("JWT_SECRET is not set")
	}
	if *account == "" {
		*account = id.NewID32()
	}
	if !reAccount.MatchString(*account) {
		return fmt.Errorf("account %q is not 32 lowercase hex chars", *account)
	}
	if *ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	tok, err := mw.IssueToken(secret, *account, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "account=%s\ntoken=%s\n", *account, tok)
	return err
}
