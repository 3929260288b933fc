package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		in     inputs
		out    string
		active string
		asPage bool
		title  string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template once with the given values",
		Example: `  formpreview render -t contract.md -f fields.yaml --values answers.json
  formpreview render -t contract.html -f fields.json --page --out preview.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := a.load(cmd.Context(), in)
			if err != nil {
				return err
			}

			colors := sections.BuildFieldColorMap(doc.sections, a.sectionOpts...)
			state := preview.PreviewState{HasPreview: preview.HasPreview(doc.bundle.HTML)}
			if state.HasPreview {
				state.HTML = a.engine().Render(doc.bundle.HTML, doc.values, doc.definitions(), colors, active)
			}

			content := state.HTML
			if asPage {
				content, err = page.New().Render(page.Page{
					Title:      title,
					Body:       state.HTML,
					HasPreview: state.HasPreview,
					Sections:   doc.sections,
				})
				if err != nil {
					return err
				}
			}
			return writeOutput(cmd, out, content)
		},
	}
	in.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&active, "active", "", "field to highlight")
	cmd.Flags().BoolVar(&asPage, "page", false, "wrap the render in a standalone HTML page")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}
