package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the asig workspace",
		Long:  "Create the configuration directory with a default config.yaml and the\nprojects root directory. Running init again is harmless.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir := resolveConfigDir()

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(fmt.Sprintf("initialize config: %s", err))
	}

	root := cfg.GetString(cfgKeyProjectsRoot)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return sysError(fmt.Sprintf("create projects root: %s", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Asig initialized (config: %s, projects: %s)\n", configDir, root)
	return nil
}

// sysError prints the message to stderr and exits with the system error code.
func sysError(msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(exitSysError)
	return nil // unreachable
}
