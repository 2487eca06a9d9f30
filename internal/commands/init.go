package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/repasses-dev/repasses/internal/config"
)

func newInitCommand() *cobra.Command {
	var sourcePath string
	var municipalities []string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default repasses.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			path, err := runInit(absDir, sourcePath, municipalities, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuração criada em %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "data", "", "data source path (default data/repasses.xlsx)")
	cmd.Flags().StringArrayVar(&municipalities, "default-municipality", nil, "default municipality (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir, sourcePath string, municipalities []string, force bool) (string, error) {
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if len(municipalities) > 0 {
		cfg.Municipalities = municipalities
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.Save(path, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
