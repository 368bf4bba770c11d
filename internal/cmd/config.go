package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Chargde-Porcupine/SHtack/internal/config"
	"github.com/Chargde-Porcupine/SHtack/internal/prompt"
	"github.com/Chargde-Porcupine/SHtack/internal/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage server configuration",
	Long: `Manage shtack's configuration.

The configuration file is stored at ~/.config/shtack/config.yaml
(or $XDG_CONFIG_HOME/shtack/config.yaml if XDG_CONFIG_HOME is set).

Use the subcommands to view, edit, or initialize the configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration as YAML, with defaults applied.

If no config file exists, the default one is created and shown.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config in $EDITOR",
	Long: `Open the configuration file in your editor.

The editor is determined by the EDITOR environment variable, falling back to vi.
If the configuration file doesn't exist, a default one is created first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Long:  `Print the path to the configuration file.`,
	Args:  cobra.NoArgs,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create the default configuration file if it doesn't exist.

This creates a commented configuration file with all default values.
If the file already exists, you are asked whether to replace it when running
on a terminal; --force replaces it without asking.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configInitForce bool

// configConfirmer overrides the console confirmer used by config init.
var configConfirmer prompt.Confirmer

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Replace an existing config file")
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	term.Result(string(bytes.TrimSuffix(data, []byte("\n"))))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.EditGlobalConfig(); err != nil {
		return fmt.Errorf("failed to edit config: %w", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	term.Result(config.GlobalConfigPath())
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GlobalConfigPath()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := config.WriteDefaultConfig(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		term.Status("Created default config at: %s", path)
		return nil
	}

	replace := configInitForce
	if !replace {
		confirmer := overwriteConfirmer(cmd)
		if confirmer == nil {
			term.Status("Config already exists at %s (use --force to replace it)", path)
			return nil
		}
		ok, err := confirmer.Confirm(fmt.Sprintf("Config already exists at %s. Replace it with defaults?", path), false)
		if err != nil {
			return fmt.Errorf("failed to get confirmation: %w", err)
		}
		replace = ok
	}

	if !replace {
		term.Status("Kept existing config at: %s", path)
		return nil
	}
	if err := config.ResetDefaultConfig(); err != nil {
		return fmt.Errorf("failed to reset config: %w", err)
	}
	term.Status("Replaced config with defaults at: %s", path)
	return nil
}

// overwriteConfirmer returns the confirmer for config init, or nil when
// stdin is not a terminal and nobody can answer.
func overwriteConfirmer(cmd *cobra.Command) prompt.Confirmer {
	if configConfirmer != nil {
		return configConfirmer
	}
	if !prompt.IsTerminal(cmd.InOrStdin()) {
		return nil
	}
	return prompt.NewStdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
}
