package cmd

import (
	"github.com/jcdickinson/ferrisdoc/internal/preview"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve a rendered site for local preview",
	Example: `  ferrisdoc serve
  ferrisdoc serve --addr 127.0.0.1:9000 site`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	bindFlags(serveCmd, map[string]string{"addr": "serve.addr"})
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := cfg.OutputDir
	if len(args) == 1 {
		dir = args[0]
	}
	return preview.NewServer(dir, cfg.Serve.Addr).Serve(cmd.Context())
}
