package packs

import (
	"strings"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/score"
)

// Multiplier applied to the sum of member base scores to get a pack's bonus.
const Multiplier = 0.5

type Pack struct {
	Name    string
	Colour  string
	Levels  []*content.Level
	Missing []string
	Bonus   float64
}

// Resolve matches pack definitions against the list. Levels that are unknown, broken or unranked
// are reported as missing and do not count towards the bonus.
func Resolve(defs []content.Pack, entries []content.Entry) []Pack {
	byStem := make(map[string]*content.Level, len(entries))
	for _, e := range entries {
		if e.Scorable() {
			byStem[e.Level.Key()] = e.Level
		}
	}
	listLength := content.RankedCount(entries)

	out := make([]Pack, 0, len(defs))
	for _, def := range defs {
		p := Pack{Name: def.Name, Colour: def.Colour}
		sum := 0.0
		for _, stem := range def.Levels {
			lvl, ok := byStem[stem]
			if !ok {
				p.Missing = append(p.Missing, stem)
				continue
			}
			p.Levels = append(p.Levels, lvl)
			base, _ := score.LevelScore(lvl, 100, listLength)
			sum += base
		}
		p.Bonus = sum * Multiplier
		out = append(out, p)
	}
	return out
}

// CompletedBy is true when the user verified or has a 100% record on every level in the pack.
func (p Pack) CompletedBy(user string) bool {
	if len(p.Levels) == 0 {
		return false
	}
	for _, lvl := range p.Levels {
		if !beaten(lvl, user) {
			return false
		}
	}
	return true
}

func beaten(lvl *content.Level, user string) bool {
	if strings.EqualFold(strings.TrimSpace(lvl.Verifier), strings.TrimSpace(user)) {
		return true
	}
	for _, r := range lvl.Records {
		if r.Progress() == 100 && strings.EqualFold(strings.TrimSpace(r.User), strings.TrimSpace(user)) {
			return true
		}
	}
	return false
}
