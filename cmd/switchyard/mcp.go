package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/switchyard-ai/switchyard/internal/cli"
	"github.com/switchyard-ai/switchyard/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server over stdio, so AI agents (like Claude
Desktop) can run support conversations and manage sessions as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		rt, err := cli.Build(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}
		defer rt.Close()

		// Stdout carries JSON-RPC; everything else goes to stderr.
		log.SetOutput(os.Stderr)
		logger.Info("starting MCP server (stdio)")

		return mcp.NewServer(rt.Engine).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
