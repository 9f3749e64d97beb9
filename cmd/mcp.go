package cmd

import (
	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/fetch"
	"github.com/jcdickinson/ferrisdoc/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	Long:  `Expose render_docs and resolve_item as MCP tools over stdio.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := fetch.New(cfg.Fetch, config.JSONCacheDir())
		return mcp.NewServer(cfg, fetcher).Run()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
