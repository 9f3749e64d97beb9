package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/fetch"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <crate[@version]>",
	Short: "Download rustdoc JSON from docs.rs",
	Long:  `Download a crate's rustdoc JSON from docs.rs into the cache. Version defaults to "latest".`,
	Example: `  ferrisdoc fetch serde
  ferrisdoc fetch serde@1.0.200 --render
  ferrisdoc fetch tokio@1.0.0 --render -o site/tokio`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var fetchRender bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchRender, "render", false, "render the downloaded crate")
	fetchCmd.Flags().StringP("output", "o", "", "output directory when rendering")
	bindFlags(fetchCmd, map[string]string{"output": "output_dir"})
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	name, version := fetch.ParseCrateSpec(args[0])
	cacheDir := config.JSONCacheDir()
	client := fetch.New(cfg.Fetch, cacheDir)

	data, err := client.Fetch(cmd.Context(), name, version)
	if err != nil {
		return err
	}
	crate, err := rustdoc.Load(data)
	if err != nil {
		return fmt.Errorf("loading %s@%s: %w", name, version, err)
	}
	if fetch.HasCache(cacheDir, name, version) {
		fmt.Printf("%s@%s cached at %s\n", name, version, fetch.CachePath(cacheDir, name, version))
	} else {
		fmt.Printf("%s@%s fetched (%s)\n", name, version, crate.Version())
	}

	if !fetchRender {
		return nil
	}
	if !cmd.Flags().Changed("output") {
		cfg.OutputDir = filepath.Join(cfg.OutputDir, name)
	}
	return generate(cmd, crate)
}
