package types

// IdentityInfo is what we know about one organization member.
type IdentityInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// IdentityMap maps user id to identity details.
type IdentityMap map[string]IdentityInfo

// ProjectInfo is one entry from the organization project listing.
type ProjectInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectNameMap maps project id to its listing entry. It comes from
// the administrative API, not from uploaded usage files.
type ProjectNameMap map[string]ProjectInfo
