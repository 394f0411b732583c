package nav

import (
	"testing"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/guard"
)

var allRoles = []struct {
	role domain.Role
	code int
}{
	{domain.RoleAdmin, domain.RoleCodeAdmin},
	{domain.RoleReceptionist, domain.RoleCodeReceptionist},
	{domain.RoleLabTechnician, domain.RoleCodeLabTechnician},
	{domain.RoleAccountant, domain.RoleCodeAccountant},
	{domain.RoleNone, 0},
}

func titles(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestFilter_PerRole(t *testing.T) {
	cases := []struct {
		role domain.Role
		want []string
	}{
		{domain.RoleAdmin, []string{"Dashboard", "Reception", "Laboratory", "Finance", "Administration"}},
		{domain.RoleReceptionist, []string{"Dashboard", "Reception"}},
		{domain.RoleLabTechnician, []string{"Dashboard", "Laboratory"}},
		{domain.RoleAccountant, []string{"Dashboard", "Finance"}},
		{domain.RoleNone, []string{"Dashboard"}},
	}

	for _, tc := range cases {
		got := titles(Filter(tc.role))
		if len(got) != len(tc.want) {
			t.Fatalf("%s: visible entries %v, want %v", tc.role, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: visible entries %v, want %v (order matters)", tc.role, got, tc.want)
			}
		}
	}
}

func TestFilter_ChildrenFilteredIndependently(t *testing.T) {
	for _, e := range Filter(domain.RoleAccountant) {
		if e.Title != "Finance" {
			continue
		}
		if len(e.Children) != 3 {
			t.Fatalf("accountant should see all finance children, got %v", titles(e.Children))
		}
		return
	}
	t.Fatalf("finance section missing for accountant")
}

// Every route the filter offers must also pass the guard for the same role.
// The filter is presentational; the guard is the enforcement point, and
// nothing may be advertised that the guard would then block.
func collectRoutes(entries []Entry) []string {
	var routes []string
	for _, e := range entries {
		if e.Route != "" {
			routes = append(routes, e.Route)
		}
		routes = append(routes, collectRoutes(e.Children)...)
	}
	return routes
}

func TestFilter_NeverExceedsGuard(t *testing.T) {
	for _, rc := range allRoles {
		sess := domain.Session{
			User:        &domain.User{Username: "u", RoleCode: rc.code},
			AccessToken: "tok",
		}
		for _, route := range collectRoutes(Filter(rc.role)) {
			required, ok := RolesFor(route)
			if !ok {
				t.Fatalf("filtered route %q missing from the capability table", route)
			}
			if d := guard.Decide(sess, required...); d != guard.Allow {
				t.Fatalf("role %s offered %q but guard says %v", rc.role, route, d)
			}
		}
	}
}

func TestRolesFor_UnknownRoute(t *testing.T) {
	if _, ok := RolesFor("/not/a/screen"); ok {
		t.Fatalf("unknown route should not resolve")
	}
}
