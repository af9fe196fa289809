package main

import (
	"context"
	"fmt"
	"os"

	"utitriage/internal/config"
	"utitriage/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "uti-cli",
		Short:         "UTI risk assessment from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAssessCmd(),
		newPredictCmd(),
		newFeaturesCmd(),
		newArtifactsCmd(),
	)
	return rootCmd
}

// openContainer loads configuration and the artifact bundle
func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("error loading models: %w", err)
	}
	return c, nil
}
