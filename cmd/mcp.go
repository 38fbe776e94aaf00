package cmd

import (
	"github.com/growthlab/marshalgo/internal/contract"
	mcpserver "github.com/growthlab/marshalgo/internal/mcp"
	"github.com/growthlab/marshalgo/internal/portal"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the marshalgo MCP server",
	Long:  `Launch an MCP server that allows AI agents to query the GROWTH Marshal via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Suppress the normal header logs when running in MCP mode
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		factory := func(c *contract.Config) contract.PortalClient {
			return portal.NewClient(c)
		}
		return mcpserver.StartMCPServer(rootCtx, cfg, factory, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
