package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/store"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init URL...",
		Short: "Write a config file listing the given feeds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("config %s already exists, use --force to overwrite", opts.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config: %w", err)
			}

			config := models.DefaultConfig()
			for _, arg := range args {
				config.Sources = append(config.Sources, models.ICalSource{
					Name: models.SourceName(arg),
					URL:  arg,
				})
			}
			if err := store.NewConfigStore(opts.configPath).Save(config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config with %d sources to %s\n", len(config.Sources), opts.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
