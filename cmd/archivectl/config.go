package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/msgarchive/internal/config"
	"github.com/matheus3301/msgarchive/internal/profile"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ~/.msgarchive/config.toml",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = profile.ConfigPath()
			}
			if err := initConfig(path, force); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Config file to write (default ~/.msgarchive/config.toml)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after env overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := profile.Resolve(flagProfile)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(settings.Config)
			}
			fmt.Printf("# profile: %s\n", settings.Name)
			return toml.NewEncoder(os.Stdout).Encode(settings.Config)
		},
	}
}

// initConfig saves the default configuration to path, refusing to replace an
// existing file unless force is set.
func initConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to replace it)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return config.Save(path, config.Default())
}
