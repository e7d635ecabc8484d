package leaderboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/packs"
	"github.com/warmans/demonlist/pkg/score"
)

type LevelScore struct {
	Key     string
	Name    string
	Rank    int
	Percent float64
	Score   float64
	Link    string
}

type Row struct {
	Position   int
	User       string
	Total      float64
	Verified   []LevelScore
	Completed  []LevelScore
	Progressed []LevelScore
	Packs      []string
}

// Build computes the standings for every user that verified or holds a qualifying record on a
// ranked level. Names are merged case-insensitively, keeping the first spelling seen.
func Build(entries []content.Entry, packDefs []packs.Pack) []Row {
	listLength := content.RankedCount(entries)
	users := map[string]*Row{}

	get := func(name string) *Row {
		key := strings.ToLower(strings.TrimSpace(name))
		if r, ok := users[key]; ok {
			return r
		}
		r := &Row{User: strings.TrimSpace(name)}
		users[key] = r
		return r
	}

	for _, e := range entries {
		if !e.Scorable() {
			continue
		}
		lvl := e.Level
		rank := *e.Rank

		if strings.TrimSpace(lvl.Verifier) != "" {
			u := get(lvl.Verifier)
			u.Verified = append(u.Verified, LevelScore{
				Key:     lvl.Key(),
				Name:    lvl.Name,
				Rank:    rank,
				Percent: 100,
				Score:   score.Score(rank, 100, lvl.PercentToQualify, listLength),
				Link:    lvl.Verification,
			})
		}
		for _, rec := range lvl.QualifyingRecords() {
			if strings.TrimSpace(rec.User) == "" {
				continue
			}
			u := get(rec.User)
			ls := LevelScore{
				Key:     lvl.Key(),
				Name:    lvl.Name,
				Rank:    rank,
				Percent: rec.Progress(),
				Score:   score.Score(rank, rec.Progress(), lvl.PercentToQualify, listLength),
				Link:    rec.Link,
			}
			if ls.Percent == 100 {
				u.Completed = append(u.Completed, ls)
			} else {
				u.Progressed = append(u.Progressed, ls)
			}
		}
	}

	rows := make([]Row, 0, len(users))
	for _, u := range users {
		for _, s := range u.Verified {
			u.Total += s.Score
		}
		for _, s := range u.Completed {
			u.Total += s.Score
		}
		for _, s := range u.Progressed {
			u.Total += s.Score
		}
		for _, p := range packDefs {
			if p.CompletedBy(u.User) {
				u.Total += p.Bonus
				u.Packs = append(u.Packs, p.Name)
			}
		}
		byRank := func(a, b LevelScore) int { return cmp.Compare(a.Rank, b.Rank) }
		slices.SortFunc(u.Verified, byRank)
		slices.SortFunc(u.Completed, byRank)
		slices.SortFunc(u.Progressed, byRank)
		rows = append(rows, *u)
	}

	slices.SortFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.User), strings.ToLower(b.User))
	})
	for k := range rows {
		rows[k].Position = k + 1
	}
	return rows
}

// Render is the plain text form of the standings, limited to the top n rows (0 for all).
func Render(rows []Row, n int) string {
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	sb := &strings.Builder{}
	for _, v := range rows {
		fmt.Fprintf(sb, "%d. %s: %.2f (%d completed, %d verified)\n", v.Position, v.User, v.Total, len(v.Completed), len(v.Verified))
	}
	return sb.String()
}

func Find(rows []Row, user string) (Row, bool) {
	for _, r := range rows {
		if strings.EqualFold(r.User, strings.TrimSpace(user)) {
			return r, true
		}
	}
	return Row{}, false
}
