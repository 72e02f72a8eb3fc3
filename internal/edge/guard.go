package edge

import (
	"net/http"

	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
)

// Guard is the page-level check. It never trusts the membership cookie, so
// it catches anything the interceptor let through on a stale answer.
type Guard struct {
	resolver
}

// NewGuard creates a page guard.
func NewGuard(identifier Identifier, membership MembershipChecker, admins auth.AdminList, opts ...Option) *Guard {
	return &Guard{resolver: newResolver(identifier, membership, admins, "guard", opts)}
}

// Check evaluates the policy for r with freshly derived facts.
func (g *Guard) Check(r *http.Request) routeaccess.Decision {
	rc, _ := g.derive(r, false)
	decision := routeaccess.Evaluate(rc)
	g.logDecision(sourceGuard, r, rc, decision)
	return decision
}

// Require wraps a page handler; a redirect decision short-circuits it.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Check(r)
		if !decision.Allowed() {
			http.Redirect(w, r, redirectLocation(decision, r), http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}
