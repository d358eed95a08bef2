package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/nodeguard/configs"
	"github.com/Aman-CERP/nodeguard/internal/config"
	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Show or create nodeguard configuration.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/nodeguard/config.yaml)
  3. Project config (.nodeguard.yaml)
  4. Environment variables (NODEGUARD_*)`,
		Example: `  # Show effective configuration
  nodeguard config show

  # Create the user config from the template
  nodeguard config init

  # Create .nodeguard.yaml in the project root
  nodeguard config init --project

  # Roll the user config back to its newest backup
  nodeguard config restore`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project, effective bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file from the template",
		Long: `Write a commented configuration file with default values.

By default the user config is written. With --project, .nodeguard.yaml is
written to the project root instead. With --effective the currently loaded
configuration is written in place of the template. An existing file is kept
unless --force is given, in which case it is backed up first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				root, err := resolveRoot()
				if err != nil {
					return err
				}
				path = filepath.Join(root, config.ProjectFile)
			}
			var cfg *config.Config
			if effective {
				loaded, _, err := loadConfig()
				if err != nil {
					return err
				}
				cfg = loaded
			}
			return runConfigInit(cmd, path, force, cfg)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file after backing it up")
	cmd.Flags().BoolVar(&project, "project", false, "Write .nodeguard.yaml in the project root")
	cmd.Flags().BoolVar(&effective, "effective", false, "Write the effective configuration instead of the template")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var project, list bool

	cmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore a configuration file from a backup",
		Long: `Replace a configuration file with one of its backups.

Without an argument the newest backup is restored. The current file is
backed up first, so a restore can itself be undone. Use --list to see the
available backups, newest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetUserConfigPath()
			if project {
				root, err := resolveRoot()
				if err != nil {
					return err
				}
				path = filepath.Join(root, config.ProjectFile)
			}
			backup := ""
			if len(args) == 1 {
				backup = args[0]
			}
			return runConfigRestore(cmd, path, backup, list)
		},
	}

	cmd.Flags().BoolVar(&project, "project", false, "Restore .nodeguard.yaml in the project root")
	cmd.Flags().BoolVar(&list, "list", false, "List backups instead of restoring")

	return cmd
}

func runConfigRestore(cmd *cobra.Command, path, backup string, list bool) error {
	out := output.New(cmd.OutOrStdout())

	backups, err := config.ListBackups(path)
	if err != nil {
		return nerrors.IOError("failed to list config backups", err).WithDetail("path", path)
	}

	if list {
		if len(backups) == 0 {
			out.Warningf("No backups of %s", path)
			return nil
		}
		for _, b := range backups {
			out.Detail(b)
		}
		return nil
	}

	if backup == "" {
		if len(backups) == 0 {
			return nerrors.IOError("no backups to restore", nil).
				WithDetail("path", path).
				WithSuggestion("Backups are written by 'nodeguard config init --force'")
		}
		backup = backups[0]
	}

	if err := config.Restore(path, backup); err != nil {
		return nerrors.IOError("failed to restore configuration", err).WithDetail("backup", backup)
	}

	out.Successf("Restored %s", path)
	out.Status("from", backup)
	return nil
}

// runConfigInit writes the template to path, or cfg when it is non-nil.
func runConfigInit(cmd *cobra.Command, path string, force bool, cfg *config.Config) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Status("path", path)
			out.Status("hint", "Use --force to replace it; the current file is backed up first")
			return nil
		}
		backup, err := config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		out.Status("backup", backup)
	}

	if cfg != nil {
		if err := cfg.WriteYAML(path); err != nil {
			return nerrors.IOError("failed to write configuration", err).WithDetail("path", path)
		}
		out.Successf("Wrote effective configuration %s", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Successf("Created configuration %s", path)
	out.Status("next", "Edit the file, then run 'nodeguard check' to verify")
	return nil
}
