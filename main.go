package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackkimmins/jMineWASM/internal/server"
	"github.com/jackkimmins/jMineWASM/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the jMineWASM build over HTTPS with cross-origin isolation",
		Long: "Serve static files over HTTPS on the local network, generating a\n" +
			"self-signed certificate on first run. Every response carries the\n" +
			"Cross-Origin-Opener-Policy and Cross-Origin-Embedder-Policy headers\n" +
			"required for SharedArrayBuffer.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")

	return cmd
}

func run(cfg server.Config) error {
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run(context.Background())
}
