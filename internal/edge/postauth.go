package edge

import (
	"net/http"

	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
)

// NextParam carries the page a user wanted before signing in.
const NextParam = "next"

// PostAuthRedirect handles the hop after a sign-in or OAuth callback. It
// sends the user to a sanitized "next" page, or to their landing page.
// Facts are derived fresh: the membership cookie may predate the sign-in.
func (g *Guard) PostAuthRedirect() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, _ := g.derive(r, false)
		if !rc.Authenticated() {
			http.Redirect(w, r, routeaccess.LoginPath, http.StatusTemporaryRedirect)
			return
		}

		destination := routeaccess.ResolvePostAuthRedirect(
			r.URL.Query().Get(NextParam),
			rc.HasOrganizationMembership,
			rc.IsPlatformAdmin,
		)
		g.logDecision(sourceGuard, r, rc, routeaccess.RedirectTo(destination))
		http.Redirect(w, r, destination, http.StatusTemporaryRedirect)
	})
}
