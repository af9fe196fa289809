package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"utitriage/adapters/artifactstore"
	"utitriage/internal/config"
	"utitriage/internal/container"
	"utitriage/internal/testkit"

	"github.com/spf13/cobra"
)

func newArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage model artifact bundles",
	}
	cmd.AddCommand(
		newArtifactsDemoCmd(),
		newArtifactsPushCmd(),
		newArtifactsListCmd(),
		newArtifactsShowCmd(),
	)
	return cmd
}

func newArtifactsDemoCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the small demo bundle so the front ends run without trained models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := testkit.WriteDir(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote demo artifacts to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "./artifacts", "Directory to write the bundle into")
	return cmd
}

func newArtifactsPushCmd() *cobra.Command {
	var dir, version string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish an artifacts directory to the database registry",
		Long: `Validate a bundle directory and store it in the model_artifacts table.

Requires DATABASE_URL. Versions are immutable; "latest" is reserved.

Example: uti-cli artifacts push --dir ./models --version 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := registryContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			store := artifactstore.NewFileStore(dir, c.Logger)
			files, err := store.ReadFiles(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.Registry(cmd.Context()); err != nil {
				return err
			}
			if err := c.Publisher.Publish(cmd.Context(), version, files); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s from %s\n", version, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "./artifacts", "Bundle directory")
	cmd.Flags().StringVar(&version, "version", "", "Bundle version to publish")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func newArtifactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published bundle versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := registryContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := c.Registry(cmd.Context()); err != nil {
				return err
			}
			infos, err := c.Publisher.ListVersions(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "VERSION\tCHECKSUM\tARTIFACTS\tCREATED\n")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%.12s\t%d\t%s\n", info.Version, info.Checksum, info.Artifacts, info.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newArtifactsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Load the configured bundle and describe it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c.Predictor.Describe())
		},
	}
}

// registryContainer builds a container for registry commands, which use the
// database whatever ARTIFACT_SOURCE says
func registryContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}
