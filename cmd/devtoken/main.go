// Command devtoken prints an HS256 access token for local use against the API.
//
//	JWT_SECRET=... go run ./cmd/devtoken -uid alice -ttl 2h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/tokens"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/logger"
)

func main() {
	uid := flag.String("uid", "", "user id placed in the sub claim")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_ACCESS_TOKEN_TTL)")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.JWT.AccessTokenTTL
	}

	tok, err := tokens.GenerateAccessToken(cfg, *uid, *email, lifetime)
	if err != nil {
		logger.Fatalf("generate token: %v", err)
	}
	logger.Debugf("issued token for %s valid until %s", *uid, time.Now().Add(lifetime).Format(time.RFC3339))
	fmt.Println(tok)
}
