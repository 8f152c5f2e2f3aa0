package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose your documents to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol server",
	Long: `Serve the retrieve_context and list_documents tools, plus document
resources, to an MCP client acting for --user.

The server speaks JSON-RPC on stdin/stdout unless --port is given, in which
case it serves streamable HTTP on that port of --host.

  docchat mcp serve
  docchat mcp serve --port 8090`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "Serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "Interface for HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	retrieval, err := retrievalService()
	if err != nil {
		return err
	}
	// Without documents the server still answers retrieve_context.
	documents, _ := documentService()

	server, err := mcp.NewServer(&mcp.Ports{Retrieval: retrieval, Document: documents, OwnerID: owner()})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
