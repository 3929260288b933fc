// Package fill walks a user through every visible field in section order,
// re-rendering the preview after each answer with the next field active.
package fill

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpreview/components/locations"
	"github.com/goliatone/go-formpreview/pkg/compose"
	"github.com/goliatone/go-formpreview/pkg/dateformat"
	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

const noneOption = "(none)"

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithLocationLookup enables search prompts for location fields.
func WithLocationLookup(lookup locations.Lookup) Option {
	return func(s *Session) {
		s.lookup = lookup
	}
}

// WithInitialValues seeds answers, used as prompt defaults.
func WithInitialValues(values map[string]string) Option {
	return func(s *Session) {
		for k, v := range values {
			s.values[k] = v
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one interactive fill run.
type Session struct {
	driver   PromptDriver
	defs     field.Set
	sections []sections.Section
	coord    *preview.Coordinator
	lookup   locations.Lookup
	logger   *zap.Logger
	values   preview.FormData
}

// New prepares a session over the visible sections of defs. coord receives
// every answer and the active field.
func New(defs field.Set, secs []sections.Section, coord *preview.Coordinator, opts ...Option) *Session {
	s := &Session{
		driver:   NewSurveyDriver(),
		defs:     defs,
		sections: secs,
		coord:    coord,
		logger:   zap.NewNop(),
		values:   preview.FormData{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Values returns a copy of the answers collected so far.
func (s *Session) Values() preview.FormData {
	return s.values.Clone()
}

// Run prompts for every field and returns the collected values. On error the
// answers gathered so far are still returned.
func (s *Session) Run(ctx context.Context) (preview.FormData, error) {
	s.publish()
	defer s.coord.SetActiveField("")

	for _, section := range s.sections {
		if err := s.driver.Info(ctx, fmt.Sprintf("== %s ==", section.Label)); err != nil {
			return s.Values(), err
		}
		for _, entry := range section.Fields {
			if err := s.ask(ctx, entry.Definition, entry.Label); err != nil {
				return s.Values(), err
			}
		}
	}
	return s.Values(), nil
}

func (s *Session) ask(ctx context.Context, def field.Definition, label string) error {
	key := def.Key()
	s.coord.SetActiveField(key)
	s.logger.Debug("prompting", zap.String("field", key))

	switch mode := def.Mode().(type) {
	case field.Merged:
		return s.askMerged(ctx, def, mode, label)
	case field.RadioGroup:
		return s.askRadio(ctx, def, mode, label)
	}

	var (
		value string
		err   error
	)
	switch {
	case def.IsDate():
		value, err = s.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   s.values[key],
			Help:      "YYYY-MM-DD",
			Validator: validateDate,
		})
	case def.InputType == field.InputTypeSelect && len(def.Options) > 0:
		value, err = s.askChoice(ctx, label, def.Options, s.values[key])
	case def.InputType == field.InputTypeLocation && s.lookup != nil:
		value, err = s.askLocation(ctx, def, label)
	case def.InputType == field.InputTypeDigit:
		value, err = s.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   s.values[key],
			Help:      def.DigitFormat,
			Validator: validateDigits,
		})
	default:
		value, err = s.driver.Input(ctx, InputConfig{
			Message: label,
			Default: s.values[key],
			Help:    def.Description,
		})
	}
	if err != nil {
		return err
	}
	s.set(key, value)
	return nil
}

func (s *Session) askMerged(ctx context.Context, def field.Definition, mode field.Merged, label string) error {
	key := def.Key()
	current := compose.SplitMergedValue(s.values[key], mode.Fields, mode.Separator)
	parts := make(map[string]string, len(mode.Fields))
	for _, sub := range mode.Fields {
		subLabel := sub
		if subDef, ok := s.defs.Get(sub); ok && subDef.Label != "" {
			subLabel = subDef.Label
		}
		answer, err := s.driver.Input(ctx, InputConfig{
			Message: label + " › " + subLabel,
			Default: current[sub],
		})
		if err != nil {
			return err
		}
		parts[sub] = answer
		// partial values keep the preview moving part by part
		s.set(key, compose.JoinMergedValue(parts, mode.Fields, mode.Separator))
	}
	return nil
}

func (s *Session) askRadio(ctx context.Context, def field.Definition, mode field.RadioGroup, label string) error {
	key := def.Key()
	labels := make([]string, 0, len(mode.Options)+1)
	keys := make([]string, 0, len(mode.Options)+1)
	for _, option := range mode.Options {
		if option.Key() == "" {
			continue
		}
		text := option.Label
		if text == "" {
			text = option.Key()
		}
		labels = append(labels, text)
		keys = append(keys, option.Key())
	}
	labels = append(labels, noneOption)
	keys = append(keys, "")

	defaultIndex := len(keys) - 1
	for i, k := range keys {
		if k != "" && strings.EqualFold(k, s.values[key]) {
			defaultIndex = i
		}
	}

	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIndex})
	if err != nil {
		return err
	}
	selected := ""
	if idx >= 0 && idx < len(keys) {
		selected = keys[idx]
	}
	s.set(key, selected)

	for _, child := range field.ResolveChildFields(def, selected, s.defs) {
		childLabel := child.Label
		if childLabel == "" {
			childLabel = child.Key()
		}
		if err := s.ask(ctx, child, label+" › "+childLabel); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) askChoice(ctx context.Context, label string, options []string, current string) (string, error) {
	defaultIndex := -1
	for i, option := range options {
		if option == current {
			defaultIndex = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIndex})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", nil
	}
	return options[idx], nil
}

func (s *Session) askLocation(ctx context.Context, def field.Definition, label string) (string, error) {
	key := def.Key()
	query, err := s.driver.Input(ctx, InputConfig{
		Message: label,
		Default: s.values[key],
		Help:    "type part of a province, district or postcode",
	})
	if err != nil || strings.TrimSpace(query) == "" {
		return query, err
	}

	found, err := s.lookup.Search(ctx, query, 10)
	if err != nil {
		s.logger.Warn("location lookup failed", zap.Error(err))
		return query, nil
	}
	if len(found) == 0 {
		return query, nil
	}

	options := locations.ToOptions(found, def.LocationOutputFormat)
	labels := make([]string, 0, len(options)+1)
	for _, option := range options {
		labels = append(labels, option.Label)
	}
	labels = append(labels, "keep "+query)

	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: 0})
	if err != nil {
		return "", err
	}
	if idx >= 0 && idx < len(options) {
		return options[idx].Value, nil
	}
	return query, nil
}

func (s *Session) set(key, value string) {
	s.values[key] = value
	s.publish()
}

func (s *Session) publish() {
	s.coord.UpdateValues(s.values)
	s.coord.Flush()
}

func validateDate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := dateformat.Parse(raw); !ok {
		return fmt.Errorf("%q is not a date", raw)
	}
	return nil
}

func validateDigits(raw string) error {
	for _, r := range raw {
		if !unicode.IsDigit(r) && r != ' ' && r != '-' {
			return fmt.Errorf("%q must contain digits only", raw)
		}
	}
	return nil
}
