package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list forms,
look up employees, query suggestions and submit records.

By default the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  hisforms mcp serve
  hisforms mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "hisforms": {
        "command": "/path/to/hisforms",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Forms:       formService,
		Suggestions: suggestionService,
		Patients:    patientService,
		Records:     recordService,
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(mcpPorts())
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
