package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jcdickinson/ferrisdoc/internal/render"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <input.json[.zst]> <item-path>",
	Short: "Print the page URL documenting an item",
	Example: `  ferrisdoc resolve mycrate.json mycrate::Point
  ferrisdoc resolve mycrate.json Point::new
  ferrisdoc resolve --json mycrate.json struct@Point`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

var resolveJSON bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")
	resolveCmd.Flags().Bool("include-private", false, "consider private items")
	bindFlags(resolveCmd, map[string]string{"include-private": "include_private"})
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	crate, err := rustdoc.LoadFile(args[0])
	if err != nil {
		return err
	}
	c, err := render.NewContext(crate, cfg)
	if err != nil {
		return err
	}

	res, ok := c.Resolve(args[1])
	if !ok {
		return fmt.Errorf("no documented item matches %q", args[1])
	}
	if resolveJSON {
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("%s (%s)\n  %s\n", res.Path, res.Kind, res.URL)
	return nil
}
