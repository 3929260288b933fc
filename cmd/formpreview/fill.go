package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/components/locations"
	"github.com/goliatone/go-formpreview/internal/fill"
	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		in    inputs
		out   string
		save  string
		title string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a document interactively, refreshing the preview after each answer",
		Long: `Prompts for every visible field section by section. When --out is set the
preview page is rewritten after each answer, so it can be kept open in a
browser. The collected values are printed as JSON, or written to --save.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := a.load(cmd.Context(), in)
			if err != nil {
				return err
			}

			static, err := locations.NewStaticLookup(nil)
			if err != nil {
				return err
			}
			lookup := locations.NewCache(static, a.cfg.Locations.CacheTTL, a.cfg.Locations.CacheSize, nil)

			renderer := page.New()
			coordOpts := []preview.CoordinatorOption{preview.WithLogger(a.logger)}
			if out != "" {
				coordOpts = append(coordOpts, preview.WithOnPublish(func(state preview.PreviewState) {
					writePage(a.logger, renderer, out, title, state, doc.sections)
				}))
			}
			coord := preview.NewCoordinator(a.engine(), coordOpts...)
			coord.SetDefinitions(doc.definitions())
			coord.SetColors(sections.BuildFieldColorMap(doc.sections, a.sectionOpts...))
			coord.SetTemplate(doc.bundle.HTML)

			session := fill.New(doc.definitions(), doc.sections, coord,
				fill.WithLocationLookup(lookup),
				fill.WithInitialValues(doc.values),
				fill.WithLogger(a.logger),
			)
			values, err := session.Run(cmd.Context())
			if errors.Is(err, fill.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				err = nil
			}
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(values, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, save, string(encoded)+"\n")
		},
	}
	in.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "preview page rewritten after every answer")
	cmd.Flags().StringVar(&save, "save", "", "write collected values to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}

// writePage renders a publication into a standalone page. Failures are logged
// so a broken write never interrupts the session.
func writePage(logger *zap.Logger, renderer *page.Renderer, path, title string, state preview.PreviewState, secs []sections.Section) {
	html, err := renderer.Render(page.Page{
		Title:      title,
		Body:       state.HTML,
		HasPreview: state.HasPreview,
		Sections:   secs,
	})
	if err == nil {
		err = writeFile(path, html)
	}
	if err != nil {
		logger.Warn("write preview page", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("preview page written", zap.String("path", path), zap.Int("bytes", len(html)))
}
