package cache

import (
	"hash/fnv"
	"strconv"
)

// AnonymousIdentity is the identity segment shared by all callers without a token.
const AnonymousIdentity = "anon"

// Key identifies one cached response.
type Key struct {
	// URL is the fully resolved request URL
	URL string

	// Identity is the hashed caller token (AnonymousIdentity for anonymous calls)
	Identity string
}

// NewKey builds the cache key for a request URL and the caller's access token.
func NewKey(url, accessToken string) Key {
	return Key{
		URL:      url,
		Identity: HashIdentity(accessToken),
	}
}

// String generates a deterministic cache key string.
// Format: portal:identity:url
//
// Example:
//
//	portal:anon:https://api.example.com/api/v1/startups
func (k Key) String() string {
	identity := k.Identity
	if identity == "" {
		identity = AnonymousIdentity
	}
	return "portal:" + identity + ":" + k.URL
}

// HashIdentity reduces an access token to a short FNV-1a hash rendered in base 36.
// The hash is not cryptographic; it only keeps raw secrets out of cache keys.
func HashIdentity(accessToken string) string {
	if accessToken == "" {
		return AnonymousIdentity
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(accessToken))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
