package aggregate

import (
	"fmt"
	"sort"

	"github.com/hyunseo/orgusage/internal/types"
)

// NameForUser returns the display name for a user id, or "" when the
// identity map has no usable entry.
func NameForUser(userID string, identity types.IdentityMap) string {
	return identity[userID].Name
}

// NameOrFallback resolves a display name with the deterministic
// fallback the views show for unmapped ids.
func NameOrFallback(userID string, identity types.IdentityMap) string {
	if name := NameForUser(userID, identity); name != "" {
		return name
	}
	return fmt.Sprintf("Unknown (%s...)", truncateID(userID, 8))
}

// UserIDForName is the reverse lookup, mainly for debugging views.
// Ids are scanned in sorted order so the first match is stable.
func UserIDForName(name string, identity types.IdentityMap) string {
	ids := make([]string, 0, len(identity))
	for id := range identity {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if identity[id].Name == name {
			return id
		}
	}
	return ""
}

func truncateID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}
