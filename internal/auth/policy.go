package auth

import "pharmacy/m/domain"

// Policy maps "resource:action" to the roles allowed to perform it. An
// action missing from the table is denied to everyone.
type Policy map[string][]string

func (p Policy) Allows(action, role string) bool {
	for _, allowed := range p[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	adminOnly     = []string{domain.RoleAdmin}
	adminAndStaff = []string{domain.RoleAdmin, domain.RoleStaff}
)

// DefaultPolicy returns the route permissions of the API.
func DefaultPolicy() Policy {
	p := Policy{
		"statistics:read":   adminAndStaff,
		"statistics:export": adminAndStaff,
		"users:read":        adminAndStaff,
		"users:manage":      adminOnly,
		"profile:write":     adminAndStaff,
	}
	for _, resource := range []string{
		"customers", "suppliers", "manufacturers", "categories", "medicines",
		"received-notes", "delivery-notes", "received-note-details", "delivery-note-details",
	} {
		p[resource+":read"] = adminAndStaff
		p[resource+":write"] = adminAndStaff
	}
	return p
}
