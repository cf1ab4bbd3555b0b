// Command issuer-token mints an issuer bearer token for a retailer or
// manufacturer account, signed with the server's JWT settings.
//
//	JWT_SIGNING_KEY=... issuer-token --subject acme-retail --ttl 720h
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	jwttoken "warranty/internal/jwt_token"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "issuer-token:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("issuer-token", flag.ContinueOnError)
	subject := fs.StringP("subject", "s", "", "issuer account the token is minted for (required)")
	role := fs.String("role", jwttoken.RoleIssuer, "role claim")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	key := fs.String("signing-key", os.Getenv("JWT_SIGNING_KEY"), "HS256 signing key (defaults to JWT_SIGNING_KEY)")
	issuer := fs.String("issuer", envOr("JWT_ISSUER", "warranty"), "iss claim")
	audience := fs.String("audience", envOr("JWT_AUDIENCE", "warranty-api"), "aud claim")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return fmt.Errorf("--subject is required")
	}
	if *key == "" {
		return fmt.Errorf("no signing key: set JWT_SIGNING_KEY or --signing-key")
	}
	if *ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	token, err := jwttoken.NewJWTService(*key, *issuer, *audience).GenerateIssuerToken(*subject, *role, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
