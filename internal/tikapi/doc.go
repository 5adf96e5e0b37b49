// Package tikapi talks to the TikAPI live endpoints and projects their JSON
// responses into display ids and room ids.
//
// Search and recommendation responses nest the owner object at different
// depths, so each projection has its own accessor:
//
//	search:    data[] → live_info → owner → display_id
//	recommend: data[] → owner → display_id
//
// Missing fields are treated as "no value". Only an unparsable document
// produces an error.
package tikapi
