// Package routeaccess decides whether a navigation may proceed or must be
// redirected, based on four facts about the requester: the path, whether a
// user is signed in, whether that user belongs to an organization and whether
// the user is a platform admin.
//
// Evaluate is pure and total. The edge interceptor and the page-level guard
// both call it, so they cannot disagree on a decision.
//
// # Precedence
//
// Rules are checked in order and the first match wins:
//
//  1. Anonymous on a non-public path: redirect to the login page.
//  2. Anonymous on a public path: allow.
//  3. Admin path: allow platform admins, send everyone else to their landing path.
//  4. Platform admin: onboarding and auth entry pages redirect to the admin console.
//  5. No organization: onboarding is allowed; the workspace root, auth entry
//     pages and any non-public path redirect to onboarding; public pages stay visible.
//  6. Member on onboarding: redirect to the workspace.
//  7. Member on an auth entry page: redirect to the workspace.
//  8. Everything else: allow.
//
// Paths that are not classified fall through to rule 8, so unknown paths fail open.
//
// # Redirect Targets
//
// PostAuthRedirectPath is the single source of truth for where a signed-in
// user lands. SanitizeNextPath must be applied to every externally supplied
// "return to" value before it reaches a redirect or a link.
package routeaccess
