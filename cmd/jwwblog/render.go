package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/joywithwealth/jwwblog"
	"github.com/joywithwealth/jwwblog/dom"
)

func renderCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "render [slug]",
		Short: "Render a post page, or the list page without a slug, to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := jwwblog.LoadConfig()
			if err != nil {
				return err
			}
			app := jwwblog.New(cfg)
			if err := app.Init(); err != nil {
				return err
			}

			var doc *dom.Document
			if len(args) == 0 {
				doc, err = app.RenderList(cmd.Context(), tag)
			} else {
				doc, err = app.RenderPost(cmd.Context(), "/blog/posts/"+url.PathEscape(args[0])+"/")
			}
			if err != nil {
				return err
			}
			return doc.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "filter the list page by tag")
	return cmd
}
