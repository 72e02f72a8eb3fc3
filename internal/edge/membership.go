package edge

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Sternrassler/portal-edge/pkg/auth"
	"github.com/Sternrassler/portal-edge/pkg/client"
	"github.com/google/uuid"
)

const (
	// MembershipCookieName caches the membership fact between requests.
	MembershipCookieName = "portal_org_membership"

	// MembershipCookieMaxAge is the cookie lifetime in seconds. A membership
	// change can take this long to be noticed by the interceptor.
	MembershipCookieMaxAge = 60

	membershipPath = "/organizations/membership"
)

// MembershipChecker answers whether a user belongs to an organization.
type MembershipChecker interface {
	HasMembership(ctx context.Context, identity auth.Identity, accessToken string) (bool, error)
}

// APIMembershipChecker asks the API.
type APIMembershipChecker struct {
	client *client.Client
}

// NewAPIMembershipChecker creates a checker backed by the API client.
func NewAPIMembershipChecker(c *client.Client) *APIMembershipChecker {
	return &APIMembershipChecker{client: c}
}

type membershipResponse struct {
	HasMembership bool `json:"hasMembership"`
}

// HasMembership implements MembershipChecker. Failures are returned so the
// caller can decide not to remember the answer.
func (m *APIMembershipChecker) HasMembership(ctx context.Context, identity auth.Identity, accessToken string) (bool, error) {
	resp, err := client.Fetch[membershipResponse](ctx, m.client, client.Request{
		Path:         membershipPath,
		AccessToken:  accessToken,
		ThrowOnError: true,
	})
	if err != nil {
		return false, fmt.Errorf("check membership for %s: %w", identity.ID, err)
	}
	if resp == nil {
		return false, nil
	}
	return resp.HasMembership, nil
}

// encodeMembership renders "<userId>:<1|0>".
func encodeMembership(userID uuid.UUID, hasMembership bool) string {
	flag := "0"
	if hasMembership {
		flag = "1"
	}
	return userID.String() + ":" + flag
}

// decodeMembership parses a cookie value. ok is false for malformed values.
func decodeMembership(value string) (userID uuid.UUID, hasMembership bool, ok bool) {
	idPart, flag, found := strings.Cut(value, ":")
	if !found {
		return uuid.Nil, false, false
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, false, false
	}
	switch flag {
	case "1":
		return id, true, true
	case "0":
		return id, false, true
	}
	return uuid.Nil, false, false
}

// readMembershipCookie returns the remembered membership for userID. A cookie
// written for a different user is ignored.
func readMembershipCookie(r *http.Request, userID uuid.UUID) (hasMembership bool, ok bool) {
	cookie, err := r.Cookie(MembershipCookieName)
	if err != nil {
		return false, false
	}
	id, has, valid := decodeMembership(cookie.Value)
	if !valid || id != userID {
		return false, false
	}
	return has, true
}

// membershipCookie builds the cookie remembering a membership answer.
func membershipCookie(userID uuid.UUID, hasMembership, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     MembershipCookieName,
		Value:    encodeMembership(userID, hasMembership),
		Path:     "/",
		MaxAge:   MembershipCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
