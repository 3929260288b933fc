// Package dateformat renders canonically stored date values (ISO style
// "2006-01-02", RFC 3339 timestamps) using the day/month/year layouts that
// field definitions declare, for example "dd/mm/yyyy" or "d mmmm bbbb".
//
// Layout tokens are case-insensitive:
//
//	d, dd       day of month, dd zero padded
//	m, mm       month number, mm zero padded
//	mmm, mmmm   abbreviated and full month name
//	yy, yyyy    Gregorian year
//	bb, bbbb    Buddhist era year (Gregorian + 543)
//
// Any other character is copied literally.
package dateformat
