package main

import (
	"bytes"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func newFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestRun_IssuesTokenForAccount(t *testing.T) {
	acct := strings.Repeat("a", 32)
	var out bytes.Buffer
	if err := run(newFlags(), []string{"-account", acct, "-ttl", "1h"}, []byte("s3cret"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "account="+acct {
		t.Fatalf("unexpected output: %q", out.String())
	}
	raw := strings.TrimPrefix(lines[1], "token=")
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != acct {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestRun_RandomAccount(t *testing.T) {
	var out bytes.Buffer
	if err := run(newFlags(), nil, []byte("s3cret"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	first := strings.SplitN(out.String(), "\n", 2)[0]
	if !reAccount.MatchString(strings.TrimPrefix(first, "account=")) {
		t.Fatalf("random account not 32-hex: %q", first)
	}
}

func TestRun_Errors(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		secret string
	}{
		{"no secret", nil, ""},
		{"bad account", []string{"-account", "XYZ"}, "s"},
		{"bad ttl", []string{"-ttl", "-1h"}, "s"},
		{"unknown flag", []string{"-nope"}, "s"},
	}
	for _, tc := range cases {
		if err := run(newFlags(), tc.args, []byte(tc.secret), io.Discard); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
