package auth

import "strings"

// AdminList is the platform-admin email allow-list.
type AdminList struct {
	emails map[string]struct{}
}

// ParseAdminList builds an allow-list from a comma separated value.
// Emails are trimmed and lowercased; blanks are skipped.
func ParseAdminList(value string) AdminList {
	return NewAdminList(strings.Split(value, ",")...)
}

// NewAdminList builds an allow-list from individual emails.
func NewAdminList(emails ...string) AdminList {
	list := AdminList{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		if normalized := normalizeEmail(email); normalized != "" {
			list.emails[normalized] = struct{}{}
		}
	}
	return list
}

// Contains reports whether email is a platform admin.
func (l AdminList) Contains(email string) bool {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return false
	}
	_, ok := l.emails[normalized]
	return ok
}

// IsPlatformAdmin reports whether the identity is a platform admin.
func (l AdminList) IsPlatformAdmin(identity *Identity) bool {
	return identity != nil && l.Contains(identity.Email)
}

// Len returns the number of admins.
func (l AdminList) Len() int {
	return len(l.emails)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
