// Command issue-token mints a bearer token bound to one tenant.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/yanqian/invoice-query/internal/domain/auth"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
	"github.com/yanqian/invoice-query/internal/infra/config"
	"github.com/yanqian/invoice-query/pkg/logger"
)

func main() {
	tenantID := flag.Int64("tenant", 0, "tenant (user) id the token is bound to")
	subject := flag.String("subject", "", "token subject, usually an email")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
	svc := auth.NewService(auth.Config{Secret: cfg.Auth.JWTSecret, TokenTTL: cfg.Auth.TokenTTL}, logger.New())
	issued, err := svc.IssueToken(context.Background(), tenant.ID(*tenantID), *subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
	_ = json.NewEncoder(os.Stdout).Encode(issued)
}
