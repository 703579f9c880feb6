package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/onramp-pay/onramp/internal/webhook"
)

func signCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature of a raw body read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("secret not provided and WEBHOOK_SECRET not set")
			}
			body, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), webhook.Sign([]byte(secret), body))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("WEBHOOK_SECRET"), "Shared signing secret")
	return cmd
}
