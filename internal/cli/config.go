// Config loading for the asig CLI. Settings come from config.yaml in the
// config directory, with environment overrides under the ASIG_ prefix.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyProjectsRoot = "projects_root"
	cfgKeyListenAddr   = "listen_addr"
	cfgKeyUIDir        = "ui_dir"

	defaultProjectsRoot = "projects"
	defaultListenAddr   = ":8083"
	defaultUIDir        = "ui/dist"
)

// configFileDoc is the structure written to config.yaml on first run.
type configFileDoc struct {
	ProjectsRoot string `yaml:"projects_root"`
	ListenAddr   string `yaml:"listen_addr"`
	UIDir        string `yaml:"ui_dir"`
}

// loadConfig reads config.yaml from the config directory using Viper,
// creating the directory and a default file on first run. Values may be
// overridden with ASIG_PROJECTS_ROOT, ASIG_LISTEN_ADDR, and ASIG_UI_DIR.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyProjectsRoot, defaultProjectsRoot)
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetDefault(cfgKeyUIDir, defaultUIDir)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("ASIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(configFileDoc{
		ProjectsRoot: defaultProjectsRoot,
		ListenAddr:   defaultListenAddr,
		UIDir:        defaultUIDir,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
