// Command issue-token mints a bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
	"github.com/anu-devcode/deploy-test-sub001/internal/config"
	"github.com/anu-devcode/deploy-test-sub001/internal/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional config file (.env or .yaml)")
	user := flag.String("user", "", "user id (token subject)")
	tenant := flag.String("tenant", "", "tenant id")
	role := flag.String("role", auth.RoleCustomer, "ADMIN, STAFF or CUSTOMER")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger := logging.New("info", "console")
	if *user == "" || *tenant == "" {
		logger.Fatal().Msg("-user and -tenant are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	maker, err := auth.NewMaker(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("token maker")
	}
	token, claims, err := maker.CreateToken(auth.Principal{UserID: *user, TenantID: *tenant, Role: *role}, *ttl)
	if err != nil {
		logger.Fatal().Err(err).Msg("create token")
	}
	logger.Info().Str("subject", claims.Subject).Time("expires_at", claims.ExpiresAt.Time).Msg("token issued")
	fmt.Println(token)
}
