package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/internal/watch"
	"github.com/goliatone/go-formpreview/pkg/page"
	"github.com/goliatone/go-formpreview/pkg/preview"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		in    inputs
		out   string
		title string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite the preview page whenever an input file changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var live *watch.Live
			renderer := page.New()
			coord := preview.NewCoordinator(a.engine(),
				preview.WithDeferral(a.cfg.Preview.Deferral),
				preview.WithLogger(a.logger),
				preview.WithOnPublish(func(state preview.PreviewState) {
					if live == nil {
						return
					}
					writePage(a.logger, renderer, out, title, state, live.Sections())
				}),
			)
			live = watch.NewLive(a.loader(), watch.Inputs{
				Template:    in.template,
				Definitions: in.definitions,
				Aliases:     in.aliases,
				DataTypes:   in.dataTypes,
				Values:      in.values,
				Sanitize:    a.cfg.Sources.Sanitize,
			}, coord, watch.WithLiveLogger(a.logger), watch.WithSectionOptions(a.sectionOpts...))

			a.logger.Info("watching inputs", zap.String("template", in.template), zap.String("out", out))
			err := live.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	in.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "preview.html", "preview page to rewrite")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}
