package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/logger"
	mcpserver "github.com/ziadkadry99/product-advisor/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing catalog search, selection and routine tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol.
		logger.SetOutput(os.Stderr)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		adv, err := app.newAdvisor(context.Background(), cliSession)
		if err != nil {
			logger.Warn("catalog unavailable; product tools will return the load-failure message", "error", err)
		}

		mcpserver.Version = Version
		logger.Info("advisor MCP server started on stdio", "products", len(adv.Snapshot().Products))

		return mcpserver.NewServer(adv).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
