// Package locations provides address lookup for location fields: an embedded
// list of Thai provinces, search helpers, a TTL cache around any Lookup and a
// small net/http handler that returns JSON options for form inputs.
//
// The default handler responds to GET and HEAD requests and supports query and
// limit parameters to filter results. Each option value is the location
// rendered with the configured output layout, so it can be stored directly as
// the field value. Callers with sub-district level data supply their own
// locations through WithLocations or a custom Lookup.
package locations
