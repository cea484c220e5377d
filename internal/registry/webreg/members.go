package webreg

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"meikan/internal/logging"
	"meikan/internal/registry"
)

// FetchRoster loads a team page and extracts its member table.
func (c *Client) FetchRoster(ctx context.Context, team registry.Team) ([]registry.Member, error) {
	if strings.TrimSpace(team.URL) == "" {
		return nil, registry.Wrap(registry.ErrParse, "fetch roster", "team has no url", nil)
	}

	doc, err := c.get(ctx, team.URL)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.member-list tbody")
	if table.Length() == 0 {
		return nil, registry.Wrap(registry.ErrParse, "fetch roster", "member table not found on "+team.URL, nil)
	}

	var members []registry.Member
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		member := registry.Member{
			Name:     strings.TrimSpace(cells.Eq(1).Text()),
			KanaName: strings.TrimSpace(cells.Eq(2).Text()),
		}
		if cells.Length() > 3 {
			member.BirthDate = strings.TrimSpace(cells.Eq(3).Text())
		}
		if id, ok := row.Attr("data-member-id"); ok {
			member.ID = strings.TrimSpace(id)
		} else {
			member.ID = strings.TrimSpace(cells.Eq(0).Text())
		}
		if href, ok := row.Find("a[href]").First().Attr("href"); ok {
			member.DetailURL = c.resolveURL(href)
		}
		if member.Name != "" {
			members = append(members, member)
		}
	})

	c.logger.Debug("roster fetched",
		logging.String("team", team.Name),
		logging.Int("members", len(members)))
	return members, nil
}

// detailLabels maps the registry's detail page row headings to member
// fields.
var detailLabels = map[string]func(*registry.Member, string){
	"身長":    func(m *registry.Member, v string) { m.Height = v },
	"体重":    func(m *registry.Member, v string) { m.Weight = v },
	"学年":    func(m *registry.Member, v string) { m.Grade = v },
	"ポジション": func(m *registry.Member, v string) { m.Position = v },
	"出身校":   func(m *registry.Member, v string) { m.School = v },
	"背番号":   func(m *registry.Member, v string) { m.UniformNumber = v },
	"登録状態":  func(m *registry.Member, v string) { m.RegistrationStatus = v },
	"生年月日":  func(m *registry.Member, v string) { m.BirthDate = v },
}

// FetchMemberDetail loads the member's detail page and fills the extended
// fields. Members without a detail URL are marked detailed with whatever
// the roster table already provided.
func (c *Client) FetchMemberDetail(ctx context.Context, member *registry.Member) error {
	if member == nil {
		return registry.Wrap(registry.ErrParse, "fetch member detail", "member is nil", nil)
	}
	if member.Detailed {
		return nil
	}
	if strings.TrimSpace(member.DetailURL) == "" {
		member.Detailed = true
		return nil
	}

	doc, err := c.get(ctx, member.DetailURL)
	if err != nil {
		return err
	}

	rows := doc.Find("table.member-detail tr, dl.member-detail > *")
	if rows.Length() == 0 {
		return registry.Wrap(registry.ErrParse, "fetch member detail", "detail table not found on "+member.DetailURL, nil)
	}

	doc.Find("table.member-detail tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").Text())
		value := strings.TrimSpace(row.Find("td").Text())
		if assign, ok := detailLabels[label]; ok && value != "" {
			assign(member, value)
		}
	})
	// Some registry pages render the same rows as a definition list.
	doc.Find("dl.member-detail dt").Each(func(_ int, dt *goquery.Selection) {
		label := strings.TrimSpace(dt.Text())
		value := strings.TrimSpace(dt.NextFiltered("dd").Text())
		if assign, ok := detailLabels[label]; ok && value != "" {
			assign(member, value)
		}
	})

	member.Detailed = true
	c.logger.Debug("member detail fetched", logging.String("member", member.Name))
	return nil
}
