package locations

import (
	"sort"
	"strings"
)

// Search filters locations by a case-insensitive substring of any name part
// or the postcode. Matches where a part starts with the query come first;
// ties keep input order.
func Search(locations []Location, query string, limit int, opts Options) []Location {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(locations) <= limit {
				return append([]Location{}, locations...)
			}
			return append([]Location{}, locations[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedLocation, 0, 16)
	for _, loc := range locations {
		contains, prefix := false, false
		for _, part := range searchParts(loc) {
			lower := strings.ToLower(part)
			if strings.Contains(lower, q) {
				contains = true
				if strings.HasPrefix(lower, q) {
					prefix = true
					break
				}
			}
		}
		if contains {
			matches = append(matches, matchedLocation{loc: loc, isPrefix: prefix})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Location, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.loc)
	}
	return out
}

// Option is the JSON shape returned to form inputs.
type Option struct {
	Value    string   `json:"value"`
	Label    string   `json:"label"`
	Location Location `json:"location"`
}

// ToOptions converts locations to form options using layout for the value.
func ToOptions(locations []Location, layout string) []Option {
	if len(locations) == 0 {
		return nil
	}
	out := make([]Option, 0, len(locations))
	for _, loc := range locations {
		value := Format(loc, layout)
		label := value
		if loc.ProvinceLocal != "" {
			label = value + " (" + loc.ProvinceLocal + ")"
		}
		out = append(out, Option{Value: value, Label: label, Location: loc})
	}
	return out
}

func searchParts(loc Location) []string {
	return []string{loc.Subdistrict, loc.District, loc.Province, loc.ProvinceLocal, loc.Postcode}
}

type matchedLocation struct {
	loc      Location
	isPrefix bool
}
