package main

import (
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/config"
	"github.com/cwbudde/clut/internal/logging"
)

var (
	logLevel   string
	configPath string
	noColor    bool

	cfg    = config.Default()
	logger = zap.NewNop()

	// loadAPI binds the OpenCL implementation. Tests swap in a fake.
	loadAPI = cl.Load
)

var rootCmd = &cobra.Command{
	Use:   "clut",
	Short: "OpenCL 1.2 inspection and helper toolkit",
	Long: `clut queries OpenCL platforms and devices, prints their capabilities and
supported image formats, builds program sources with their logs, and moves
images between files and devices.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "load configuration")
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}
		if err := c.Validate(); err != nil {
			return err
		}
		c.Apply()
		cfg = c

		switch {
		case noColor || c.Color == config.ColorNever:
			color.NoColor = true
		case c.Color == config.ColorAlways:
			color.NoColor = false
		}

		l, err := logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile, Console: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// openAPI loads the OpenCL binding.
func openAPI() (cl.API, error) {
	api, err := loadAPI()
	if err != nil {
		return nil, errors.Wrap(err, "load OpenCL")
	}
	return api, nil
}

var heading = color.New(color.Bold, color.FgCyan)
