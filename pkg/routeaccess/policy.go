package routeaccess

import "strings"

// DecisionKind tags a Decision.
type DecisionKind uint8

const (
	// DecisionAllow lets the request through.
	DecisionAllow DecisionKind = iota

	// DecisionRedirect sends the request to Destination.
	DecisionRedirect
)

// Decision is the outcome of Evaluate: allow, or redirect to a path.
type Decision struct {
	kind        DecisionKind
	destination string
}

// Allow returns the allow decision.
func Allow() Decision {
	return Decision{kind: DecisionAllow}
}

// RedirectTo returns a redirect decision.
func RedirectTo(destination string) Decision {
	return Decision{kind: DecisionRedirect, destination: destination}
}

// Kind returns the decision tag.
func (d Decision) Kind() DecisionKind {
	return d.kind
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.kind == DecisionAllow
}

// Destination returns the redirect target ("" for allow).
func (d Decision) Destination() string {
	return d.destination
}

// String renders "allow" or "redirect:<path>".
func (d Decision) String() string {
	if d.Allowed() {
		return "allow"
	}
	return "redirect:" + d.destination
}

// RequestContext holds the facts a decision is made from. They are supplied
// by the caller; Evaluate never looks them up.
type RequestContext struct {
	Pathname string

	// UserID is the authenticated user; empty means anonymous
	UserID string

	HasOrganizationMembership bool
	IsPlatformAdmin           bool
}

// Authenticated reports whether a user is present.
func (rc RequestContext) Authenticated() bool {
	return rc.UserID != ""
}

// Evaluate maps the request facts to a decision. It is pure and total.
func Evaluate(rc RequestContext) Decision {
	path := rc.Pathname

	if !rc.Authenticated() {
		if !IsPublicPath(path) {
			return RedirectTo(LoginPath)
		}
		return Allow()
	}

	if IsAdminPath(path) {
		if rc.IsPlatformAdmin {
			return Allow()
		}
		return RedirectTo(PostAuthRedirectPath(rc.HasOrganizationMembership))
	}

	// Platform admins are never routed into onboarding or auth entry screens
	if rc.IsPlatformAdmin {
		if IsOnboardingPath(path) || IsAuthEntryPath(path) {
			return RedirectTo(AdminPath)
		}
		return Allow()
	}

	if !rc.HasOrganizationMembership {
		if IsOnboardingPath(path) {
			return Allow()
		}
		if IsWorkspacePath(path) || IsAuthEntryPath(path) || !IsPublicPath(path) {
			return RedirectTo(PostAuthRedirectPath(false))
		}
		return Allow()
	}

	if IsOnboardingPath(path) {
		return RedirectTo(PostAuthRedirectPath(true))
	}
	if IsAuthEntryPath(path) {
		return RedirectTo(WorkspacePath)
	}
	return Allow()
}

// PostAuthRedirectPath is where a signed-in user belongs.
func PostAuthRedirectPath(hasOrganizationMembership bool) string {
	if hasOrganizationMembership {
		return WorkspacePath
	}
	return OnboardingPath
}

// SanitizeNextPath accepts a "return to" value only when it is a path on this
// origin: it must start with exactly one slash. Protocol-relative values
// ("//host", "/\host"), absolute URLs and empty values are rejected.
func SanitizeNextPath(value string) (string, bool) {
	if !strings.HasPrefix(value, "/") {
		return "", false
	}
	if strings.HasPrefix(value, "//") || strings.HasPrefix(value, "/\\") {
		return "", false
	}
	return value, true
}

// ResolvePostAuthRedirect picks the destination after a successful login or
// OAuth callback: a valid next path wins, then the admin console for
// platform admins, then PostAuthRedirectPath.
func ResolvePostAuthRedirect(next string, hasOrganizationMembership, isPlatformAdmin bool) string {
	if path, ok := SanitizeNextPath(next); ok {
		return path
	}
	if isPlatformAdmin {
		return AdminPath
	}
	return PostAuthRedirectPath(hasOrganizationMembership)
}
