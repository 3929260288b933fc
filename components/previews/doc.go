// Package previews serves live document previews over HTTP.
//
// A client creates a session from a template and its field definitions, then
// pushes form values as the user types. Every session owns a
// preview.Coordinator, so responses always carry the latest render with the
// active field highlighted. Sessions expire after a period of inactivity.
//
// Routes, relative to the mount path (default /api/previews):
//
//	POST   /                create a session
//	GET    /{id}            last render
//	PUT    /{id}/values     replace values and active field, returns the render
//	GET    /{id}/sections   section legend
//	GET    /{id}/page       standalone HTML page
//	DELETE /{id}            drop the session
package previews
