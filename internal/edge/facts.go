// Package edge enforces the route access policy in front of the web
// frontend. The Interceptor runs on every intercepted request and may reuse a
// short-lived membership cookie; the Guard re-checks at page level without it.
package edge

import (
	"net/http"
	"net/url"

	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/logging"
	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
	"github.com/rs/zerolog"
)

// Identifier resolves the signed-in user of a request. *auth.Verifier
// implements it.
type Identifier interface {
	Identify(r *http.Request) (*auth.Identity, string, error)
}

// Option configures an Interceptor or Guard.
type Option func(*resolver)

// WithLogger sets a custom logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *resolver) {
		r.logger = l
	}
}

// WithSecureCookies marks the membership cookie Secure (production).
func WithSecureCookies(secure bool) Option {
	return func(r *resolver) {
		r.secureCookies = secure
	}
}

// resolver derives the four policy facts for a request.
type resolver struct {
	identifier    Identifier
	membership    MembershipChecker
	admins        auth.AdminList
	secureCookies bool
	logger        zerolog.Logger
}

func newResolver(identifier Identifier, membership MembershipChecker, admins auth.AdminList, component string, opts []Option) resolver {
	r := resolver{
		identifier: identifier,
		membership: membership,
		admins:     admins,
		logger:     logging.NewLogger(component),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// derive builds the request context. When useCookie is set a matching
// membership cookie replaces the API lookup, and the returned cookie (if any)
// should be written to remember a fresh answer.
func (res *resolver) derive(r *http.Request, useCookie bool) (routeaccess.RequestContext, *http.Cookie) {
	rc := routeaccess.RequestContext{Pathname: r.URL.Path}
	log := logging.WithRequest(res.logger, r)

	identity, token, err := res.identifier.Identify(r)
	if err != nil {
		log.Debug().Err(err).Msg("Session rejected - treating request as anonymous")
		return rc, nil
	}
	if identity == nil {
		return rc, nil
	}

	rc.UserID = identity.ID.String()
	rc.IsPlatformAdmin = res.admins.IsPlatformAdmin(identity)

	if useCookie {
		if has, ok := readMembershipCookie(r, identity.ID); ok {
			membershipChecksTotal.WithLabelValues("cookie").Inc()
			rc.HasOrganizationMembership = has
			return rc, nil
		}
	}

	has, err := res.membership.HasMembership(r.Context(), *identity, token)
	if err != nil {
		membershipChecksTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("user_id", rc.UserID).Msg("Membership check failed - assuming no membership")
		return rc, nil
	}
	membershipChecksTotal.WithLabelValues("api").Inc()
	rc.HasOrganizationMembership = has

	if !useCookie {
		return rc, nil
	}
	return rc, membershipCookie(identity.ID, has, res.secureCookies)
}

// logDecision records a decision in the log and metrics.
func (res *resolver) logDecision(source string, r *http.Request, rc routeaccess.RequestContext, d routeaccess.Decision) {
	recordDecision(source, d)

	event := res.logger.Debug()
	if !d.Allowed() {
		event = res.logger.Info()
	}
	event.
		Str("source", source).
		Str("path", rc.Pathname).
		Str("decision", d.String()).
		Str("destination", d.Destination()).
		Str("user_id", rc.UserID).
		Bool("member", rc.HasOrganizationMembership).
		Bool("platform_admin", rc.IsPlatformAdmin).
		Str("request_id", logging.RequestID(r)).
		Msg("Route decision")
}

// redirectLocation turns a redirect decision into a Location value. Login
// redirects remember where the user was going.
func redirectLocation(d routeaccess.Decision, r *http.Request) string {
	destination := d.Destination()
	if destination != routeaccess.LoginPath || r.URL.Path == routeaccess.LoginPath {
		return destination
	}

	original := r.URL.Path
	if r.URL.RawQuery != "" {
		original += "?" + r.URL.RawQuery
	}
	next, ok := routeaccess.SanitizeNextPath(original)
	if !ok {
		return destination
	}
	return destination + "?" + url.Values{NextParam: {next}}.Encode()
}
