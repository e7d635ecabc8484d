package roulette

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/score"
)

const DefaultMax = 100

var (
	ErrNoLevels       = errors.New("no levels available")
	ErrFinished       = errors.New("roulette is finished")
	ErrInvalidPercent = errors.New("invalid percent")
)

type Options struct {
	Seed          uint64
	IncludeLegacy bool
	Max           int
}

type Pick struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Author       string `json:"author"`
	RankLabel    string `json:"rankLabel"`
	Verification string `json:"verification,omitempty"`
}

// Game is a roulette run: every level must be beaten to at least one percent more than the
// previous one, until someone reaches 100% or gives up.
type Game struct {
	Seed     uint64    `json:"seed"`
	Levels   []Pick    `json:"levels"`
	Progress []float64 `json:"progress"`
	GivenUp  bool      `json:"givenUp"`
}

func New(entries []content.Entry, opts Options) (*Game, error) {
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	picks := make([]Pick, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil || e.Level == nil {
			continue
		}
		if e.Rank == nil && !opts.IncludeLegacy {
			continue
		}
		picks = append(picks, Pick{
			Key:          e.Level.Key(),
			Name:         e.Level.Name,
			Author:       e.Level.Author,
			RankLabel:    score.RankLabel(e.Rank),
			Verification: e.Level.Verification,
		})
	}
	if len(picks) == 0 {
		return nil, ErrNoLevels
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(picks), func(i, j int) {
		picks[i], picks[j] = picks[j], picks[i]
	})
	if len(picks) > opts.Max {
		picks = picks[:opts.Max]
	}
	return &Game{Seed: opts.Seed, Levels: picks, Progress: []float64{}}, nil
}

// Current is the level that must be played next.
func (g *Game) Current() (Pick, bool) {
	if g.Done() {
		return Pick{}, false
	}
	return g.Levels[len(g.Progress)], true
}

// Required is the minimum percent accepted for the current level.
func (g *Game) Required() float64 {
	if len(g.Progress) == 0 {
		return 1
	}
	return g.Progress[len(g.Progress)-1] + 1
}

func (g *Game) Submit(percent float64) error {
	if g.Done() {
		return ErrFinished
	}
	if math.IsNaN(percent) || percent < g.Required() || percent > 100 {
		return fmt.Errorf("%w: need between %s%% and 100%%", ErrInvalidPercent, score.FormatPercent(g.Required()))
	}
	g.Progress = append(g.Progress, percent)
	return nil
}

func (g *Game) GiveUp() {
	g.GivenUp = true
}

func (g *Game) Completed() bool {
	return len(g.Progress) > 0 && g.Progress[len(g.Progress)-1] >= 100
}

func (g *Game) Done() bool {
	return g.GivenUp || g.Completed() || len(g.Progress) >= len(g.Levels)
}

// Played returns each finished level alongside the percent reached.
func (g *Game) Played() []Played {
	out := make([]Played, 0, len(g.Progress))
	for k, p := range g.Progress {
		out = append(out, Played{Pick: g.Levels[k], Percent: p})
	}
	return out
}

// Remaining are the levels that were never reached, only meaningful once the game is done.
func (g *Game) Remaining() []Pick {
	next := len(g.Progress)
	if !g.Done() {
		next++
	}
	if next >= len(g.Levels) {
		return []Pick{}
	}
	return g.Levels[next:]
}

type Played struct {
	Pick    Pick
	Percent float64
}

func (g *Game) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

func Import(r io.Reader) (*Game, error) {
	g := &Game{}
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode roulette: %w", err)
	}
	if len(g.Levels) == 0 {
		return nil, ErrNoLevels
	}
	if len(g.Progress) > len(g.Levels) {
		return nil, fmt.Errorf("%w: more progress than levels", ErrInvalidPercent)
	}
	prev := 0.0
	for _, p := range g.Progress {
		if p <= prev || p > 100 {
			return nil, fmt.Errorf("%w: progress must strictly increase up to 100", ErrInvalidPercent)
		}
		prev = p
	}
	if g.Progress == nil {
		g.Progress = []float64{}
	}
	return g, nil
}
