package cmd

import (
	"fmt"

	"github.com/jcdickinson/ferrisdoc/internal/render"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render <input.json[.zst]>",
	Short: "Render a rustdoc JSON file to HTML",
	Example: `  ferrisdoc render target/doc/mycrate.json
  ferrisdoc render --output site --include-private mycrate.json
  ferrisdoc render serde_1.0.200.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringP("output", "o", "", "output directory")
	f.Bool("include-private", false, "document private items")
	f.Bool("include-foreign-impls", false, "list impls whose target is in another crate")
	f.String("crate-version", "", "version label shown in the sidebar")
	f.String("external-base-url", "", "base URL for dependencies without html_root_url")
	f.String("style", "", "chroma style for syntax.css")
	bindFlags(renderCmd, map[string]string{
		"output":                "output_dir",
		"include-private":       "include_private",
		"include-foreign-impls": "include_foreign_impls",
		"crate-version":         "crate_version",
		"external-base-url":     "external_base_url",
		"style":                 "highlight.style",
	})
	rootCmd.AddCommand(renderCmd)
}

// flagKeys maps each command's flags to the viper keys they override.
// Several commands share keys, so binding happens only for the command
// that runs.
var flagKeys = map[*cobra.Command]map[string]string{}

func bindFlags(cmd *cobra.Command, keys map[string]string) {
	flagKeys[cmd] = keys
}

func bindCommandFlags(cmd *cobra.Command) error {
	for flag, key := range flagKeys[cmd] {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	crate, err := rustdoc.LoadFile(args[0])
	if err != nil {
		return err
	}
	return generate(cmd, crate)
}

// generate renders crate with the loaded config and reports the summary.
func generate(cmd *cobra.Command, crate *rustdoc.Crate) error {
	summary, err := render.Generate(cmd.Context(), crate, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("rendered %s: %d/%d pages written to %s\n", crate.Name(), summary.Written, summary.Pages, cfg.OutputDir)
	for _, f := range summary.Failures {
		fmt.Printf("  %s: error: %v\n", f.File, f.Err)
	}
	if summary.Skipped > 0 {
		fmt.Printf("  %d pages skipped\n", summary.Skipped)
	}
	if status := summary.Status(); status != render.StatusSuccess {
		return fmt.Errorf("render finished with status %s", status)
	}
	return nil
}
