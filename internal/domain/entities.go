package domain

// Repository represents a GitHub repository owned by an organization.
// Identity is the URL; repositories are immutable once fetched.
type Repository struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	IsArchived bool   `json:"isArchived"`
}

// User represents a GitHub organization member. Login is the sole
// identity; MemberOf is empty until membership reconciliation runs.
type User struct {
	Login     string   `json:"login"`
	Name      string   `json:"name,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Email     string   `json:"email,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	MemberOf  []string `json:"memberOf"`
}

// Team represents a GitHub team within one organization.
//
// ParentSlug is the declared parent as fetched; Parent and Children are
// populated by hierarchy linking and are not serialized (storage keeps
// only the declared slug and rebuilds the tree on read).
type Team struct {
	Slug         string   `json:"slug"`
	CombinedSlug string   `json:"combinedSlug"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	AvatarURL    string   `json:"avatarUrl,omitempty"`
	ParentSlug   string   `json:"parentSlug,omitempty"`
	Members      []string `json:"members"`

	Parent   *Team   `json:"-"`
	Children []*Team `json:"-"`
}

// IsRoot reports whether the team has no resolved parent.
func (t *Team) IsRoot() bool {
	return t.Parent == nil
}

// LocationTypeURL is the location type emitted for repository URLs.
const LocationTypeURL = "url"

// Location is a pass-through pointer handed to the caller for each
// eligible repository, for routing into downstream processing.
type Location struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// OrgData is the complete, reconciled entity set for one organization
// read. Repositories holds everything fetched, archived included;
// Matching is the non-archived subset callers are expected to act on.
type OrgData struct {
	Org          string        `json:"org"`
	Repositories []*Repository `json:"repositories"`
	Users        []*User       `json:"users"`
	Teams        []*Team       `json:"teams"`
}

// Matching returns the repositories eligible for downstream use,
// preserving fetch order.
func (d *OrgData) Matching() []*Repository {
	var matching []*Repository
	for _, r := range d.Repositories {
		if !r.IsArchived {
			matching = append(matching, r)
		}
	}
	return matching
}

// Locations returns one URL location per non-archived repository, in
// fetch order.
func (d *OrgData) Locations() []*Location {
	var locations []*Location
	for _, r := range d.Matching() {
		locations = append(locations, &Location{
			Type:   LocationTypeURL,
			Target: r.URL,
		})
	}
	return locations
}
