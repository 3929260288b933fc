package locations

import "strings"

// DefaultLayout is used when a field declares no location output format.
const DefaultLayout = "{subdistrict} {district} {province} {postcode}"

// Format renders loc with layout. Placeholders are {code}, {subdistrict},
// {district}, {province}, {province_local} and {postcode}; unknown ones are
// kept verbatim. Whitespace left by empty parts is collapsed.
func Format(loc Location, layout string) string {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}
	r := strings.NewReplacer(
		"{code}", loc.Code,
		"{subdistrict}", loc.Subdistrict,
		"{district}", loc.District,
		"{province}", loc.Province,
		"{province_local}", loc.ProvinceLocal,
		"{postcode}", loc.Postcode,
	)
	return strings.Join(strings.Fields(r.Replace(layout)), " ")
}
