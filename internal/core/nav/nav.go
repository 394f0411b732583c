// Package nav holds the one static table mapping roles to the navigation
// entries and routes they may see. The filter is presentational only: it
// controls what is offered, while guard.Decide remains the enforcement
// point for every route it lists.
package nav

import "github.com/vitacare/clinic-ops/internal/core/domain"

// Entry is a navigation item. A nil Roles slice means the entry is visible
// to every authenticated role; children carry their own role tags and are
// filtered independently of their parent.
type Entry struct {
	Title    string        `json:"title"`
	Route    string        `json:"route,omitempty"`
	Roles    []domain.Role `json:"-"`
	Children []Entry       `json:"children,omitempty"`
}

// Menu is the full, ordered dashboard navigation. Defined once, never
// mutated at runtime.
var Menu = []Entry{
	{Title: "Dashboard", Route: "/"},
	{
		Title: "Reception",
		Roles: []domain.Role{domain.RoleAdmin, domain.RoleReceptionist},
		Children: []Entry{
			{Title: "Patients", Route: "/reception/patients", Roles: []domain.Role{domain.RoleAdmin, domain.RoleReceptionist}},
			{Title: "Appointments", Route: "/reception/appointments", Roles: []domain.Role{domain.RoleAdmin, domain.RoleReceptionist}},
		},
	},
	{
		Title: "Laboratory",
		Roles: []domain.Role{domain.RoleAdmin, domain.RoleLabTechnician},
		Children: []Entry{
			{Title: "Samples", Route: "/lab/samples", Roles: []domain.Role{domain.RoleAdmin, domain.RoleLabTechnician}},
			{Title: "Results", Route: "/lab/results", Roles: []domain.Role{domain.RoleAdmin, domain.RoleLabTechnician}},
		},
	},
	{
		Title: "Finance",
		Roles: []domain.Role{domain.RoleAdmin, domain.RoleAccountant},
		Children: []Entry{
			{Title: "Invoices", Route: "/finance/invoices", Roles: []domain.Role{domain.RoleAdmin, domain.RoleAccountant}},
			{Title: "Payments", Route: "/finance/payments", Roles: []domain.Role{domain.RoleAdmin, domain.RoleAccountant}},
			{Title: "Reports", Route: "/finance/reports", Roles: []domain.Role{domain.RoleAdmin, domain.RoleAccountant}},
		},
	},
	{
		Title: "Administration",
		Roles: []domain.Role{domain.RoleAdmin},
		Children: []Entry{
			{Title: "Users", Route: "/admin/users", Roles: []domain.Role{domain.RoleAdmin}},
			{Title: "Settings", Route: "/admin/settings", Roles: []domain.Role{domain.RoleAdmin}},
		},
	},
}

// Filter returns the subset of Menu visible to a role. A group entry that
// has no route of its own and loses all of its children is dropped even if
// its own tag would admit the role.
func Filter(role domain.Role) []Entry {
	return filterEntries(Menu, role)
}

func filterEntries(entries []Entry, role domain.Role) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !roleAllowed(e.Roles, role) {
			continue
		}
		e.Children = filterEntries(e.Children, role)
		if e.Route == "" && len(e.Children) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// RolesFor returns the required-role set for a route, from the same table
// the filter reads. A nil result means the route only requires
// authentication; false means the route is not part of the dashboard.
func RolesFor(route string) ([]domain.Role, bool) {
	return rolesFor(Menu, route)
}

func rolesFor(entries []Entry, route string) ([]domain.Role, bool) {
	for _, e := range entries {
		if e.Route == route {
			return e.Roles, true
		}
		if roles, ok := rolesFor(e.Children, route); ok {
			return roles, ok
		}
	}
	return nil, false
}

func roleAllowed(allowed []domain.Role, role domain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
