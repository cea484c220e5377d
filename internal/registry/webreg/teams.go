package webreg

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"meikan/internal/logging"
	"meikan/internal/registry"
)

const teamSearchPath = "/teams/search"

// SearchTeams queries the team search page for an institution variant and
// extracts the result table. An empty result table is a valid response.
func (c *Client) SearchTeams(ctx context.Context, variant string) ([]registry.Team, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return nil, registry.Wrap(registry.ErrParse, "search teams", "empty search variant", nil)
	}

	query := url.Values{}
	query.Set("q", variant)
	doc, err := c.get(ctx, c.baseURL+teamSearchPath+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.team-list tbody")
	if table.Length() == 0 && doc.Find(".no-results").Length() == 0 {
		return nil, registry.Wrap(registry.ErrParse, "search teams", "result table not found", nil)
	}

	var teams []registry.Team
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		team := registry.Team{
			Name: strings.TrimSpace(link.Text()),
			URL:  c.resolveURL(href),
		}
		if id, ok := row.Attr("data-team-id"); ok {
			team.ID = strings.TrimSpace(id)
		} else {
			team.ID = lastPathSegment(team.URL)
		}
		if team.Name != "" && team.URL != "" {
			teams = append(teams, team)
		}
	})

	c.logger.Debug("team search",
		logging.String("variant", variant),
		logging.Int("teams", len(teams)))
	return teams, nil
}

func lastPathSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	trimmed := strings.TrimRight(parsed.Path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
