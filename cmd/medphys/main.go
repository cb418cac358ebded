package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"medphys/internal/logging"
	"medphys/pkg/config"
)

var (
	configPath string
	settings   = viper.New()
	cfg        *config.Config
	logger     *logrus.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "medphys",
		Short:         "Dose analysis of radiotherapy plans and Pinnacle dataset inspection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	if err := settings.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(newDepthDoseCommand(), newProfileCommand(), newDVHCommand(), newPinnacleCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings reads the YAML config, then applies MEDPHYS_* environment
// variables and command-line flags on top of it.
func loadSettings() error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	settings.SetEnvPrefix("medphys")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()

	settings.SetDefault("logging.level", loaded.Logging.Level)
	settings.SetDefault("dvh.bins", loaded.DVH.Bins)
	settings.SetDefault("profile.direction", loaded.Profile.Direction)

	loaded.Logging.Level = settings.GetString("logging.level")
	loaded.DVH.Bins = settings.GetInt("dvh.bins")
	loaded.Profile.Direction = settings.GetString("profile.direction")

	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = logging.NewLogger(cfg.Logging.Level)
	logger.WithField("config", configPath).Debug("Configuration loaded")
	return nil
}

// parseFloats converts flag values such as "0,10,20" into numbers
func parseFloats(name string, values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for --%s: %w", v, name, err)
		}
		out = append(out, f)
	}
	return out, nil
}
