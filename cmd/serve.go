package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/assistant"
	"github.com/omriShneor/donna/internal/auth"
	"github.com/omriShneor/donna/internal/claude"
	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/logging"
	"github.com/omriShneor/donna/internal/server"
	"github.com/omriShneor/donna/internal/speech"
	"github.com/omriShneor/donna/internal/timeutil"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Donna API server",
		Long: `Start the HTTP server that the chat and voice clients talk to.

Requires ANTHROPIC_API_KEY for intent extraction. Google Calendar access
needs GOOGLE_CREDENTIALS_FILE to point at an OAuth client secret; without
it the server still runs but authorization is disabled. Set OPENAI_API_KEY
to enable the text-to-speech endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			logger := logging.New(cfg.LogLevel, cfg.DevMode)
			defer logger.Sync()
			return runServe(cfg, logger)
		},
	}
}

func runServe(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	loc, dst := timeutil.CivilZone(cfg.Timezone, time.Now())
	logger.Info("timezone pinned",
		zap.String("timezone", cfg.Timezone),
		zap.String("zone", loc.String()),
		zap.Bool("dst", dst),
	)

	oauthConfig, err := gcal.LoadOAuthConfig(cfg.GoogleCredentialsFile, cfg.ServerURL+"/api/auth/callback")
	if err != nil {
		logger.Warn("Google credentials not loaded, calendar authorization disabled", zap.Error(err))
		oauthConfig = nil
	}

	extractor := claude.NewClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.ClaudeTemperature, logger)

	var synth server.Synthesizer
	if cfg.OpenAIAPIKey != "" {
		synth = speech.NewClient(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice, cfg.TTSSpeed, logger)
		logger.Info("text-to-speech configured", zap.String("voice", cfg.TTSVoice))
	} else {
		logger.Info("OPENAI_API_KEY not set, speech endpoint disabled")
	}

	srv := server.New(server.Config{
		Port:          cfg.HTTPPort,
		AllowedOrigin: cfg.AllowedOrigin,
		Auth:          auth.NewService(),
		OAuth:         oauthConfig,
		Assistant:     assistant.New(extractor, loc, logger),
		Synth:         synth,
		Location:      loc,
		Logger:        logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
