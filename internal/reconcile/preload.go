package reconcile

import (
	"context"
	"sync"

	"meikan/internal/logging"
	"meikan/internal/nameutil"
	"meikan/internal/registry"
	"meikan/internal/roster"
)

// memberRef is a pre-loaded roster member with canonical comparison forms
// computed once, so per-row scans do no normalization work. The mutex
// guards detail-fetch memoization: rows sharing a matched member fetch its
// detail page once.
type memberRef struct {
	team      registry.Team
	canonical string
	canonKana string

	mu     sync.Mutex
	member registry.Member
}

// preload resolves the institution's search variants and fills the
// team-search and roster caches before any per-row work begins. The
// returned member list is in deterministic order: variant, then team, then
// roster position. An institution matching no teams returns an empty list,
// which is not an error.
func (s *Scheduler) preload(ctx context.Context, inst roster.Institution) ([]*memberRef, error) {
	var members []*memberRef
	seenTeams := make(map[string]struct{})

	for _, variant := range inst.Variants {
		variant := variant
		teams, err := s.teams.GetOrFetch(ctx, nameutil.Normalize(variant), func(ctx context.Context) ([]registry.Team, error) {
			return s.client.SearchTeams(ctx, variant)
		})
		if err != nil {
			return nil, err
		}

		for _, team := range teams {
			if _, seen := seenTeams[team.URL]; seen {
				continue
			}
			seenTeams[team.URL] = struct{}{}

			team := team
			rosterMembers, err := s.rosters.GetOrFetch(ctx, team.URL, func(ctx context.Context) ([]registry.Member, error) {
				return s.client.FetchRoster(ctx, team)
			})
			if err != nil {
				return nil, err
			}

			for _, member := range rosterMembers {
				members = append(members, &memberRef{
					team:      team,
					member:    member,
					canonical: nameutil.Normalize(member.Name),
					canonKana: nameutil.Normalize(member.KanaName),
				})
			}
		}
	}

	s.logger.Debug("institution pre-loaded",
		logging.String(logging.FieldInstitution, inst.Name),
		logging.Int("variants", len(inst.Variants)),
		logging.Int("teams", len(seenTeams)),
		logging.Int("members", len(members)))
	return members, nil
}
