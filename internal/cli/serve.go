package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sealmit/asig/internal/project"
	"github.com/sealmit/asig/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		root  string
		uiDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long:  "Start the HTTP server exposing project, artifact, and trace operations.\nFlags override values from config.yaml.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(resolveConfigDir())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr == "" {
				addr = cfg.GetString(cfgKeyListenAddr)
			}
			if root == "" {
				root = cfg.GetString(cfgKeyProjectsRoot)
			}
			if uiDir == "" {
				uiDir = cfg.GetString(cfgKeyUIDir)
			}

			logger := newLogger()
			svc := project.NewService(root, logger)
			srv := server.New(server.Config{Addr: addr, UIDir: uiDir}, svc, logger)
			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&root, "projects-root", "", "projects root directory (default from config)")
	cmd.Flags().StringVar(&uiDir, "ui-dir", "", "built frontend directory (default from config)")
	return cmd
}
