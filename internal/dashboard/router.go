// Package dashboard maps resolved role names to post-login landing views.
// Routing is a convenience, not a security boundary; the guard decides what
// a principal may actually do once landed.
package dashboard

// DefaultDestination is the generic landing view for any role without an
// explicit entry.
const DefaultDestination = "/overview"

// destinations is the fixed role-to-view table. Adding a role to the panel
// means adding a row here.
var destinations = map[string]string{
	"Admin":        "/admin",
	"Director":     "/director",
	"Manager":      "/manager",
	"Front Desk":   "/frontdesk",
	"Reservation":  "/reservations",
	"Housekeeping": "/housekeeping",
	"Finance":      "/finance",
	"Maintenance":  "/maintenance",
}

// RouteFor returns the landing destination for a role name. Total over all
// strings: unknown names land on DefaultDestination, never an error, since
// steering an unmapped role to a safe generic view beats locking it out of
// navigation entirely.
func RouteFor(roleName string) string {
	if dest, ok := destinations[roleName]; ok {
		return dest
	}
	return DefaultDestination
}
