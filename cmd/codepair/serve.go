package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codepair/codepair/internal/config"
	"github.com/codepair/codepair/internal/executor"
	"github.com/codepair/codepair/internal/server"
	"github.com/codepair/codepair/internal/session"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CodePair server",
	Long: `Start the CodePair HTTP server with the websocket session transport.

The health probe is at /health, the websocket endpoint at /ws.

Examples:
  codepair serve
  codepair serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Resolve the language table
	languages := executor.DefaultLanguages()
	if cfg.Exec.LanguagesFile != "" {
		languages, err = executor.LoadLanguages(cfg.Exec.LanguagesFile)
		if err != nil {
			return fmt.Errorf("loading languages: %w", err)
		}
	}
	log.Info().Int("languages", len(languages)).Dur("timeout", cfg.Exec.Timeout).Msg("sandbox configured")

	sandbox := executor.NewSandbox(languages, cfg.Exec.Timeout, cfg.Exec.TempDir)
	hub := session.NewHub(sandbox)

	srv := server.New(cfg, hub, sandbox)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	return srv.Start(portFlag)
}
