package cmd

import (
	"github.com/huangsam/devpulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the DevPulse MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents generate reports, list snapshots and read metric definitions.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Logs already go to stderr, which keeps stdio clean for the protocol.
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		p, err := newPipeline(rootCtx, nil)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, p, cacheManager)
	},
}
