package locations

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Location is one addressable place. Province level records leave
// Subdistrict, District and Postcode empty.
type Location struct {
	Code          string `json:"code"`
	Subdistrict   string `json:"subdistrict,omitempty"`
	District      string `json:"district,omitempty"`
	Province      string `json:"province"`
	ProvinceLocal string `json:"provinceLocal,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
}

//go:embed data/provinces.txt
var dataFS embed.FS

const defaultListPath = "data/provinces.txt"

var (
	defaultOnce      sync.Once
	defaultLocations []Location
	defaultErr       error
)

// DefaultLocations returns a copy of the embedded province list.
func DefaultLocations() ([]Location, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		defaultLocations, defaultErr = LoadLocations(f)
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Location{}, defaultLocations...), nil
}

// LoadLocations parses pipe separated rows. Three columns describe a province
// (code|english|local); five describe a full address
// (code|subdistrict|district|province|postcode). Blank lines and # comments
// are skipped, as are repeated codes.
func LoadLocations(r io.Reader) ([]Location, error) {
	if r == nil {
		return nil, fmt.Errorf("locations: missing reader")
	}

	scanner := bufio.NewScanner(r)
	out := make([]Location, 0, 128)
	seen := map[string]struct{}{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "|")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		var loc Location
		switch len(cols) {
		case 3:
			loc = Location{Code: cols[0], Province: cols[1], ProvinceLocal: cols[2]}
		case 5:
			loc = Location{Code: cols[0], Subdistrict: cols[1], District: cols[2], Province: cols[3], Postcode: cols[4]}
		default:
			return nil, fmt.Errorf("locations: line %d: expected 3 or 5 columns, got %d", lineNo, len(cols))
		}
		if loc.Code == "" {
			return nil, fmt.Errorf("locations: line %d: missing code", lineNo)
		}
		if _, ok := seen[loc.Code]; ok {
			continue
		}
		seen[loc.Code] = struct{}{}
		out = append(out, loc)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
