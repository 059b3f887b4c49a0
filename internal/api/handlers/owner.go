package handlers

import "net/http"

// ownerHeader carries the authenticated user identity resolved upstream.
// Identity resolution itself is outside this service.
const ownerHeader = "X-User-Id"

// ownerID extracts the owner identity from the request, empty if absent
func ownerID(r *http.Request) string {
	return r.Header.Get(ownerHeader)
}
