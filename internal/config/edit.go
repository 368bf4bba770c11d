package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Chargde-Porcupine/SHtack/internal/clog"
)

// EditGlobalConfig opens the global configuration file in the user's editor.
// If the configuration file doesn't exist, it creates the default one first using
// WriteDefaultConfig.
// The editor is determined by the EDITOR environment variable, falling back to "vi".
// After the editor exits, the configuration is loaded and validated. If validation
// fails, a warning is logged but the function returns nil (the user may want to
// fix the file manually later).
func EditGlobalConfig() error {
	path := GlobalConfigPath()

	// Create default config if file doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefaultConfig(); err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
	}

	// Open editor
	if err := openEditor(path); err != nil {
		return err
	}

	// Validate the edited config
	_, err := LoadGlobalConfig()
	if err != nil {
		clog.Warn("global config has errors after edit: %v", err)
		// Don't fail - user may want to fix it later
	}

	return nil
}

// openEditor opens the specified file in the user's editor.
// The editor is determined by the EDITOR environment variable, falling back to "vi".
// EDITOR may carry arguments, e.g. "code --wait".
func openEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return fmt.Errorf("EDITOR %q is blank", editor)
	}

	cmd := exec.Command(fields[0], append(fields[1:], path)...) //nolint:gosec // editor is chosen by the user
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", editor, err)
	}

	return nil
}
