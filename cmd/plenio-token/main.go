// Command plenio-token mints a bearer token for the jwt identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"plenio/internal/cli"
	"plenio/internal/config"
	"plenio/internal/identity"
)

func main() {
	sub := flag.String("sub", "", "subject (user id) to put in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()

	if *sub == "" {
		fmt.Fprintln(os.Stderr, "usage: plenio-token -sub <uid> [-ttl 24h]")
		os.Exit(2)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := identity.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience).Issue(*sub, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
