package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/daydemir/phaser/internal/config"
	"github.com/daydemir/phaser/internal/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or modify configuration",
	Long: `View or modify phaser configuration.

The effective configuration merges defaults, the config file and PHASER_*
environment variables.

Examples:
  phaser config                      Show the effective config
  phaser config runner.max_minutes   Get a specific value
  phaser config claude.model opus    Set a value in .phaser.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			return setConfigValue(args[0], args[1])
		}

		v, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return getConfigValue(v, args[0])
		}
		return showConfig(v)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(v *viper.Viper) error {
	out, err := renderSettings(v.AllSettings())
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		fmt.Printf("# %s\n", used)
	}
	fmt.Print(out)
	return nil
}

func getConfigValue(v *viper.Viper, key string) error {
	if !v.IsSet(key) {
		return fmt.Errorf("key not found: %s", key)
	}
	value := v.Get(key)
	if m, ok := value.(map[string]any); ok {
		out, err := renderSettings(m)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}
	fmt.Println(formatSetting(value))
	return nil
}

// setConfigValue writes key into the config file, creating .phaser.yaml in
// the workspace root when no explicit file was given
func setConfigValue(key, value string) error {
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("unknown config key: %s", key)
	}

	path := cfgFile
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = filepath.Join(workspace.Find(afero.NewOsFs(), cwd), config.FileName)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.Set(key, value)

	// Reject values the typed config cannot decode
	if err := config.Check(v.AllSettings()); err != nil {
		return err
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// renderSettings prints nested settings as YAML with readable durations
func renderSettings(settings map[string]any) (string, error) {
	out, err := yaml.Marshal(normalizeSettings(settings))
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}

func normalizeSettings(settings map[string]any) map[string]any {
	normalized := make(map[string]any, len(settings))
	for key, value := range settings {
		switch value := value.(type) {
		case map[string]any:
			normalized[key] = normalizeSettings(value)
		case time.Duration:
			normalized[key] = value.String()
		default:
			normalized[key] = value
		}
	}
	return normalized
}

func formatSetting(value any) string {
	switch value := value.(type) {
	case time.Duration:
		return value.String()
	case []string:
		return strings.Join(value, ",")
	default:
		return fmt.Sprint(value)
	}
}
