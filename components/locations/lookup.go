package locations

import "context"

// Lookup resolves a search query to locations.
type Lookup interface {
	Search(ctx context.Context, query string, limit int) ([]Location, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, query string, limit int) ([]Location, error)

func (f LookupFunc) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	return f(ctx, query, limit)
}

// StaticLookup searches an in-memory list.
type StaticLookup struct {
	locations []Location
	opts      Options
}

// NewStaticLookup searches locations, or the embedded list when nil.
func NewStaticLookup(locations []Location, fns ...OptionFn) (*StaticLookup, error) {
	if locations == nil {
		loaded, err := DefaultLocations()
		if err != nil {
			return nil, err
		}
		locations = loaded
	}
	return &StaticLookup{
		locations: append([]Location{}, locations...),
		opts:      NewOptions(fns...),
	}, nil
}

func (s *StaticLookup) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Search(s.locations, query, limit, s.opts), nil
}
