package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/omriShneor/donna/internal/apiclient"
	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/prefs"
)

const (
	loginQRPath  = "donna_login_qr.png"
	pollInterval = 2 * time.Second
	pollTimeout  = 5 * time.Minute
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize Donna to use your Google Calendar",
		Long: `Mint a session on the server and walk through the Google consent
screen. The authorization link is printed and also saved as a QR code so a
phone can finish the flow for a headless server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runLogin(ctx, config.LoadFromEnv())
		},
	}
}

func runLogin(ctx context.Context, cfg *config.Config) error {
	store, err := prefs.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}
	defer store.Close()

	api := apiclient.New(cfg.ServerURL, "")

	// Reuse the stored session when it is still authorized.
	if token, err := store.SessionToken(); err == nil && token != "" {
		api.SetToken(token)
		if authorized, err := api.AuthStatus(ctx); err == nil && authorized {
			fmt.Println("Already signed in.")
			return nil
		}
		api.SetToken("")
		if err := store.ClearSessionToken(); err != nil {
			return fmt.Errorf("clearing stale session: %w", err)
		}
	}

	token, err := api.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("reaching server at %s: %w", cfg.ServerURL, err)
	}
	api.SetToken(token)

	authURL, err := api.AuthURL(ctx)
	if err != nil {
		return fmt.Errorf("requesting authorization URL: %w", err)
	}

	fmt.Println("Open this link to connect your Google Calendar:")
	fmt.Printf("\n  %s\n\n", authURL)
	if err := qrcode.WriteFile(authURL, qrcode.Medium, 512, loginQRPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not save QR code PNG: %v\n", err)
	} else {
		fmt.Printf("Or scan the QR code saved to %s\n", loginQRPath)
	}
	fmt.Println("Waiting for authorization...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.After(pollTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("authorization timed out; run 'donna login' to try again")
		case <-ticker.C:
			authorized, err := api.AuthStatus(ctx)
			if err != nil || !authorized {
				continue
			}
			if err := store.SetSessionToken(token); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Println("You're signed in. Try 'donna chat'.")
			return nil
		}
	}
}
