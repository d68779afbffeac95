package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize advisor configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the catalog, chat backend, web search and preference storage, and writes a .advisor.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
