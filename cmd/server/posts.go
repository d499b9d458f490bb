package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mx-space/folio/internal/modules/content/post"
)

var (
	postsJSON  bool
	postsSlugs bool
)

var postsCmd = &cobra.Command{
	Use:   "posts [dir]",
	Short: "Load the content directory and print what was found",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := appConfig.Content.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		loader := post.NewLoader(logger, appConfig.Content.Extensions...)
		out := cmd.OutOrStdout()

		if postsSlugs {
			slugs, err := loader.Slugs(dir)
			if err != nil {
				return err
			}
			for _, s := range slugs {
				fmt.Fprintln(out, s)
			}
			return nil
		}

		posts, err := loader.LoadAll(dir)
		if err != nil {
			return err
		}
		if postsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(posts)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tPUBLISHED\tCATEGORY\tREAD TIME\tTITLE")
		for _, p := range posts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Slug, p.PublishedAt, p.Category, p.ReadTime, p.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d posts in %s\n", len(posts), dir)
		return nil
	},
}

func init() {
	postsCmd.Flags().BoolVar(&postsJSON, "json", false, "print full records as JSON")
	postsCmd.Flags().BoolVar(&postsSlugs, "slugs", false, "only list slugs without parsing")
}
