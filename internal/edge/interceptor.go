package edge

import (
	"net/http"

	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
)

// Interceptor applies the route policy before requests reach the frontend.
type Interceptor struct {
	resolver
}

// NewInterceptor creates the request interceptor.
func NewInterceptor(identifier Identifier, membership MembershipChecker, admins auth.AdminList, opts ...Option) *Interceptor {
	return &Interceptor{resolver: newResolver(identifier, membership, admins, "interceptor", opts)}
}

// Decide derives the facts for r (reusing the membership cookie) and
// evaluates the policy. The returned cookie, if non-nil, should be set on
// the response.
func (i *Interceptor) Decide(r *http.Request) (routeaccess.Decision, *http.Cookie) {
	rc, cookie := i.derive(r, true)
	decision := routeaccess.Evaluate(rc)
	i.logDecision(sourceInterceptor, r, rc, decision)
	return decision, cookie
}

// Wrap returns middleware that redirects (307) or passes requests through.
// Paths outside the intercepted roots are never inspected.
func (i *Interceptor) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !routeaccess.InterceptedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		decision, cookie := i.Decide(r)
		if cookie != nil {
			http.SetCookie(w, cookie)
		}
		if decision.Allowed() {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, redirectLocation(decision, r), http.StatusTemporaryRedirect)
	})
}
