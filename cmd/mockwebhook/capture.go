package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/onramp-pay/onramp/internal/validation"
	"github.com/onramp-pay/onramp/internal/webhook"
)

func captureCmd() *cobra.Command {
	var (
		url     string
		secret  string
		token   string
		userID  int64
		amount  string
		timeout time.Duration
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Send a signed capture notification",
		Example: `  mockwebhook capture --token abc123 --user 7 --amount 500
  mockwebhook capture --user 7 --amount 500 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			if _, err := validation.ParseMinorUnits(amount); err != nil {
				return err
			}
			if token == "" {
				token = uuid.NewString()
			}

			body, err := json.Marshal(webhook.Payload{Token: token, UserIdentifier: userID, Amount: amount})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Body: %s\n", body)

			var signature string
			if secret != "" {
				signature = webhook.Sign([]byte(secret), body)
				fmt.Fprintf(out, "%s: %s\n", webhook.SignatureHeader, signature)
			}
			if dryRun {
				fmt.Fprintln(out, "[DRY RUN] Not sending request")
				return nil
			}

			fmt.Fprintf(out, "Sending to %s...\n", url)
			agent := fiber.Post(url).
				Body(body).
				ContentType(fiber.MIMEApplicationJSON).
				Timeout(timeout)
			if signature != "" {
				agent.Set(webhook.SignatureHeader, signature)
			}
			if err := agent.Parse(); err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			status, resp, errs := agent.Bytes()
			if len(errs) > 0 {
				return fmt.Errorf("send: %w", errs[0])
			}

			fmt.Fprintf(out, "Status: %d\nResponse: %s\n", status, resp)
			if status != http.StatusOK {
				return fmt.Errorf("webhook answered %d", status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", envOr("MOCK_WEBHOOK_URL", "http://localhost:3003/hdfcWebhook"), "Webhook URL")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("WEBHOOK_SECRET"), "Shared signing secret (unsigned when empty)")
	cmd.Flags().StringVar(&token, "token", "", "On-ramp token (random when empty)")
	cmd.Flags().Int64Var(&userID, "user", 0, "User identifier")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in minor units")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print body and signature, don't send")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
