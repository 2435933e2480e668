package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"wedding-app-go/internal/auth"
	"wedding-app-go/internal/config"
	"wedding-app-go/pkg/logger"
)

func main() {
	subject := flag.String("sub", "couple", "Subject recorded in the token")
	ttl := flag.Duration("ttl", 0, "Token lifetime (default: ADMIN_TOKEN_TTL)")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	log := logger.New(os.Stderr, slog.LevelWarn, "text")
	cfg, err := config.Load(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *ttl > 0 {
		cfg.Admin.TokenTTL = *ttl
	}
	if !cfg.Admin.Enabled() {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set; the admin endpoints are open and need no token.")
		os.Exit(1)
	}

	tokens := auth.NewAdminTokens(cfg.Admin)
	token, err := tokens.Sign(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(tokens.TTL().Seconds()),
			"subject":      *subject,
		})
		return
	}

	fmt.Println("Admin token")
	fmt.Printf("Subject:  %s\n", *subject)
	fmt.Printf("Expires:  %s\n", time.Now().Add(tokens.TTL()).Format(time.RFC3339))
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:%s/api/rsvp/stats\n", token, cfg.HTTPPort)
}
