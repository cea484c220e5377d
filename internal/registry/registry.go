// Package registry defines the contract with the external federation
// registry: the data shapes it returns and the failures its adapters may
// surface. The engine depends only on this contract; the scraping adapter
// lives in the webreg subpackage.
package registry

import "context"

// Team is a registry team matched by an institution search.
type Team struct {
	ID   string
	Name string
	URL  string
}

// Member is a registry roster entry. The extended fields past DetailURL are
// populated lazily by FetchMemberDetail; Detailed reports whether that has
// happened.
type Member struct {
	ID        string
	Name      string
	KanaName  string
	BirthDate string
	DetailURL string

	Height             string
	Weight             string
	Grade              string
	Position           string
	School             string
	UniformNumber      string
	RegistrationStatus string
	Detailed           bool
}

// ExtendedFields maps logical field names to the member's extended values.
// Only non-empty values are included.
func (m Member) ExtendedFields() map[string]string {
	fields := map[string]string{
		"height":              m.Height,
		"weight":              m.Weight,
		"grade":               m.Grade,
		"position":            m.Position,
		"school":              m.School,
		"uniform_number":      m.UniformNumber,
		"registration_status": m.RegistrationStatus,
		"birth_date":          m.BirthDate,
	}
	for key, value := range fields {
		if value == "" {
			delete(fields, key)
		}
	}
	return fields
}

// Client is the registry access contract. All methods honor context
// cancellation; each request carries a bounded timeout. SearchTeams,
// FetchRoster, and FetchMemberDetail may fail with ErrNetwork or ErrParse,
// which callers treat as recoverable at row scope. Authenticate failing
// with ErrAuth is a whole-run precondition failure.
type Client interface {
	// Authenticate establishes a session. Must be called before any other
	// method.
	Authenticate(ctx context.Context) error
	// SearchTeams returns candidate teams for an institution search variant.
	// An empty slice means the variant matched nothing; it is not an error.
	SearchTeams(ctx context.Context, variant string) ([]Team, error)
	// FetchRoster returns the members of a team.
	FetchRoster(ctx context.Context, team Team) ([]Member, error)
	// FetchMemberDetail populates the member's extended fields in place and
	// sets Detailed.
	FetchMemberDetail(ctx context.Context, member *Member) error
}
