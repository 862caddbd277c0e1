package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const configName = ".design-testgen"

var cfg *viper.Viper

// fileConfig is the layout of ~/.design-testgen.yaml.
type fileConfig struct {
	URL       string `yaml:"url"`
	Framework string `yaml:"framework"`
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		URL:       "http://localhost:8080",
		Framework: "playwright",
		BaseURL:   "",
		Timeout:   "2m",
	}
}

func initConfig() error {
	cfg = viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.AddConfigPath(home)
	}

	defaults := defaultFileConfig()
	cfg.SetDefault("url", defaults.URL)
	cfg.SetDefault("framework", defaults.Framework)
	cfg.SetDefault("base_url", defaults.BaseURL)
	cfg.SetDefault("timeout", defaults.Timeout)

	cfg.SetEnvPrefix("DESIGN_TESTGEN")
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// CLI flags take highest priority
	if flagURL != "" {
		cfg.Set("url", flagURL)
	}
	if flagTimeout > 0 {
		cfg.Set("timeout", flagTimeout.String())
	}

	return nil
}

func getConfigURL() string {
	return strings.TrimRight(cfg.GetString("url"), "/")
}

func getConfigTimeout() time.Duration {
	if d := cfg.GetDuration("timeout"); d > 0 {
		return d
	}
	return 2 * time.Minute
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// writeConfigTemplate writes the default configuration to path unless a file
// already exists there. It reports whether a file was written.
func writeConfigTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return false, fmt.Errorf("failed to render config: %w", err)
	}
	content := "# design-testgen CLI configuration\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file template at ~/" + configName + ".yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}

			configPath := filepath.Join(home, configName+".yaml")
			written, err := writeConfigTemplate(configPath)
			if err != nil {
				return err
			}

			if !written {
				printMessage(cmd.OutOrStdout(), "Config file already exists at "+configPath)
				return nil
			}
			printMessage(cmd.OutOrStdout(), "Config file created at "+configPath)
			return nil
		},
	}
}

func showConfig(w io.Writer) {
	printMessage(w, fmt.Sprintf("URL:       %s", getConfigURL()))
	printMessage(w, fmt.Sprintf("Framework: %s", cfg.GetString("framework")))

	baseURL := cfg.GetString("base_url")
	if baseURL == "" {
		baseURL = "(not set)"
	}
	printMessage(w, fmt.Sprintf("Base URL:  %s", baseURL))
	printMessage(w, fmt.Sprintf("Timeout:   %s", getConfigTimeout()))

	if cfgFile := cfg.ConfigFileUsed(); cfgFile != "" {
		printMessage(w, fmt.Sprintf("Config file: %s", cfgFile))
	} else {
		printMessage(w, "Config file: (none)")
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout())
		},
	}
}
