package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Product picker and AI routine advisor",
	Long: `Advisor lets shoppers browse a product catalog, pick the products they
own and get a personalized routine from an AI chat backend, with optional
live web references. It runs as a web server, a terminal chat client or
an MCP server for AI agents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if verbose {
			level = "debug"
		}
		return logger.Configure(level, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".advisor.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
