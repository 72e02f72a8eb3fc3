package routeaccess

import "strings"

// Well-known application paths.
const (
	HomePath       = "/"
	InvitePath     = "/invite"
	LoginPath      = "/auth/login"
	SignupPath     = "/auth/signup"
	OnboardingPath = "/onboarding"
	WorkspacePath  = "/workspace"
	AdminPath      = "/admin"
)

// publicPaths are reachable without a session.
var publicPaths = map[string]bool{
	HomePath:                true,
	InvitePath:              true,
	LoginPath:               true,
	SignupPath:              true,
	"/auth/forgot-password": true,
	"/auth/sign-up-success": true,
	"/auth/confirm":         true,
	"/auth/error":           true,
	"/auth/sign-out":        true,
	"/auth/callback":        true,
	"/auth/update-password": true,
	"/auth/auth-code-error": true,
}

// frameworkPrefixes are asset paths served by the frontend framework.
var frameworkPrefixes = []string{"/_next/", "/static/"}

// interceptedRoots are the path trees the edge interceptor runs on.
var interceptedRoots = []string{"/auth", WorkspacePath, OnboardingPath, AdminPath}

// IsPublicPath reports whether pathname is reachable without a session.
func IsPublicPath(pathname string) bool {
	if publicPaths[pathname] || pathname == "/favicon.ico" {
		return true
	}
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(pathname, prefix) {
			return true
		}
	}
	return false
}

// IsAuthEntryPath reports whether pathname is the login or signup page.
func IsAuthEntryPath(pathname string) bool {
	return pathname == LoginPath || pathname == SignupPath
}

// IsOnboardingPath reports whether pathname is the onboarding page.
func IsOnboardingPath(pathname string) bool {
	return pathname == OnboardingPath
}

// IsAdminPath reports whether pathname is the admin console or below it.
func IsAdminPath(pathname string) bool {
	return underRoot(pathname, AdminPath)
}

// IsWorkspacePath reports whether pathname is exactly the workspace root.
// Workspace sub-paths are only reachable after passing the root once.
func IsWorkspacePath(pathname string) bool {
	return pathname == WorkspacePath
}

// InterceptedPath reports whether the edge interceptor evaluates pathname.
func InterceptedPath(pathname string) bool {
	for _, root := range interceptedRoots {
		if underRoot(pathname, root) {
			return true
		}
	}
	return false
}

func underRoot(pathname, root string) bool {
	return pathname == root || strings.HasPrefix(pathname, root+"/")
}
