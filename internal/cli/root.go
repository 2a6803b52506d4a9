// Package cli implements the asig command-line interface: configuration
// loading, the serve command that hosts the HTTP API, and workspace
// initialization.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagVerbose   bool
)

// NewRootCmd creates the top-level "asig" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "asig",
		Short:   "Asig is a git-backed store for engineering lifecycle artifacts",
		Long:    "Asig manages requirements, risks, verification activities, and the\ntraces between them, persisting each project as XML files in its own\ngit repository.",
		Version: Version,
		// Subcommand errors are reported by Execute, not as usage text.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.asig)")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newServeCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// resolveConfigDir returns the config directory from flag, env, or default.
func resolveConfigDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	if v := os.Getenv("ASIG_CONFIG_DIR"); v != "" {
		return v
	}
	return ".asig"
}
