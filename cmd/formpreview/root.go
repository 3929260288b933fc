package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/internal/config"
	"github.com/goliatone/go-formpreview/internal/logging"
	"github.com/goliatone/go-formpreview/pkg/dateformat"
	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
	"github.com/goliatone/go-formpreview/pkg/source"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	envFile    string
	verbose    bool
	theme      config.ThemeConfig

	cfg         *config.Config
	logger      *zap.Logger
	sectionOpts []sections.Option
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "formpreview",
		Short:         "Render live previews of templated documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, a.envFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
				Verbose: a.verbose,
				Output:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			a.applyThemeFlags()
			a.sectionOpts, err = a.resolveTheme()
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.theme.Name, "theme", "", "section color theme (default, contrast or a manifest name)")
	root.PersistentFlags().StringVar(&a.theme.Variant, "theme-variant", "", "theme variant, such as dark")
	root.PersistentFlags().StringVar(&a.theme.Manifest, "theme-manifest", "", "extra go-theme manifest file or directory")

	root.AddCommand(
		newRenderCmd(a),
		newSectionsCmd(a),
		newFillCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)
	return root
}

// inputs are the document flags shared by the file based subcommands.
type inputs struct {
	template    string
	definitions string
	aliases     string
	dataTypes   string
	values      string
}

func (in *inputs) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&in.template, "template", "t", "", "template file or URL (.html, .md)")
	flags.StringVarP(&in.definitions, "fields", "f", "", "field definitions (.json, .yaml)")
	flags.StringVar(&in.aliases, "aliases", "", "section and field aliases (.json, .yaml)")
	flags.StringVar(&in.dataTypes, "types", "", "data type catalog (.json, .yaml)")
	flags.StringVar(&in.values, "values", "", "form values (.json, .yaml)")
	_ = cmd.MarkFlagRequired("template")
}

func (in inputs) request(sanitize bool) (source.BundleRequest, error) {
	req := source.BundleRequest{Sanitize: sanitize}
	refs := []struct {
		raw string
		dst *source.Source
	}{
		{in.template, &req.Template},
		{in.definitions, &req.Definitions},
		{in.aliases, &req.Aliases},
		{in.dataTypes, &req.DataTypes},
	}
	for _, ref := range refs {
		src, err := source.Parse(ref.raw)
		if err != nil {
			return source.BundleRequest{}, err
		}
		*ref.dst = src
	}
	return req, nil
}

func (a *app) loader() *source.Loader {
	return source.NewLoader(source.LoaderOptions{
		AllowHTTP:      a.cfg.Sources.AllowHTTP,
		RequestTimeout: a.cfg.Sources.RequestTimeout,
	})
}

func (a *app) engine() *preview.Engine {
	opts := []preview.Option{
		preview.WithDateLocale(dateformat.ParseLocale(a.cfg.Preview.DateLocale)),
		preview.WithDefaultDateFormat(a.cfg.Preview.DefaultDateFormat),
	}
	if a.cfg.Preview.RawValues {
		opts = append(opts, preview.WithRawValues())
	}
	return preview.NewEngine(opts...)
}

// document is a loaded bundle plus its sections and initial values.
type document struct {
	bundle   source.Bundle
	sections []sections.Section
	values   preview.FormData
}

func (d document) definitions() field.Set { return d.bundle.Definitions }

func (a *app) load(ctx context.Context, in inputs) (document, error) {
	req, err := in.request(a.cfg.Sources.Sanitize)
	if err != nil {
		return document{}, err
	}
	loader := a.loader()
	bundle, err := source.LoadBundle(ctx, loader, req)
	if err != nil {
		return document{}, err
	}

	doc := document{
		bundle:   bundle,
		sections: sections.Build(bundle.Definitions, bundle.Aliases, a.sectionOpts...),
		values:   preview.FormData{},
	}
	if in.values != "" {
		src, err := source.Parse(in.values)
		if err != nil {
			return document{}, err
		}
		data, err := loader.Load(ctx, src)
		if err != nil {
			return document{}, err
		}
		if doc.values, err = source.ParseFormData(data); err != nil {
			return document{}, err
		}
	}
	a.logger.Debug("document loaded",
		zap.String("template", in.template),
		zap.Int("fields", bundle.Definitions.Len()),
		zap.Int("sections", len(doc.sections)),
		zap.Int("values", len(doc.values)),
	)
	return doc, nil
}

func (a *app) applyThemeFlags() {
	if a.theme.Name != "" {
		a.cfg.Theme.Name = a.theme.Name
	}
	if a.theme.Variant != "" {
		a.cfg.Theme.Variant = a.theme.Variant
	}
	if a.theme.Manifest != "" {
		a.cfg.Theme.Manifest = a.theme.Manifest
	}
}

// resolveTheme turns the theme settings into section options. An extra
// manifest is registered beside the built-in themes and becomes the default
// when no name is given.
func (a *app) resolveTheme() ([]sections.Option, error) {
	settings := a.cfg.Theme
	if settings.Name == "" && settings.Manifest == "" && settings.Variant == "" {
		return nil, nil
	}
	registry, err := sections.BuiltinThemes()
	if err != nil {
		return nil, err
	}
	name := settings.Name
	if settings.Manifest != "" {
		manifest, err := sections.LoadThemeManifest(settings.Manifest)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("theme manifest %s: %w", settings.Manifest, err)
		}
		if name == "" {
			name = manifest.Name
		}
	}
	if name == "" {
		name = sections.DefaultThemeName
	}
	opts, err := sections.ThemeOptions(theme.Selector{Registry: registry}, name, settings.Variant)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("theme selected", zap.String("theme", name), zap.String("variant", settings.Variant))
	return opts, nil
}

// writeOutput writes content to path, or to the command output when path is
// empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	return writeFile(path, content)
}

// writeFile replaces path atomically so viewers never see a partial page.
func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".formpreview-*")
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
