// Package guard is the single enforcement point for protected views. It is
// a pure decision function over a session snapshot plus a required-role set;
// it never performs I/O and never fails.
package guard

import "github.com/vitacare/clinic-ops/internal/core/domain"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Pending means rehydration or a login has not resolved yet; render a
	// placeholder, never a login redirect, or the user flashes through the
	// login screen on every restart.
	Pending Decision = iota

	// Allow renders the requested view.
	Allow

	// RedirectLogin sends an unauthenticated caller to the login screen.
	RedirectLogin

	// Forbidden renders an explicit access-denied view for an
	// authenticated caller with the wrong role. Never a silent blank page,
	// never a redirect loop.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Result pairs a decision with the route to return to after login.
type Result struct {
	Decision Decision

	// ReturnTo carries the originally requested route when the decision is
	// RedirectLogin, so a successful login can land the user back there.
	ReturnTo string
}

// Decide evaluates a session against a required-role set. An empty required
// set admits every authenticated session. The function is total: every
// combination of inputs maps to exactly one decision.
func Decide(sess domain.Session, required ...domain.Role) Decision {
	if sess.Loading {
		return Pending
	}
	if !sess.IsAuthenticated() {
		return RedirectLogin
	}
	if len(required) == 0 {
		return Allow
	}
	role := sess.Role()
	for _, r := range required {
		if r == role {
			return Allow
		}
	}
	return Forbidden
}

// DecideRoute is Decide plus the return-to bookkeeping for login redirects.
func DecideRoute(sess domain.Session, route string, required ...domain.Role) Result {
	d := Decide(sess, required...)
	res := Result{Decision: d}
	if d == RedirectLogin {
		res.ReturnTo = route
	}
	return res
}
