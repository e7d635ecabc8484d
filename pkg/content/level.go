package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLevelNotFound = errors.New("level not found")

type Record struct {
	User    string  `json:"user"`
	Link    string  `json:"link,omitempty"`
	Percent float64 `json:"percent,omitempty"`
	Hz      int     `json:"hz,omitempty"`
}

// Progress is the percent the record was registered at. Records without a percent are
// completions.
func (r Record) Progress() float64 {
	if r.Percent == 0 {
		return 100
	}
	return r.Percent
}

type Level struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Author           string   `json:"author"`
	Creators         []string `json:"creators,omitempty"`
	Verifier         string   `json:"verifier"`
	Verification     string   `json:"verification,omitempty"`
	PercentToQualify float64  `json:"percentToQualify"`
	Password         string   `json:"password,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	Records          []Record `json:"records"`

	// Rank is assigned from the position in the list file, nil for legacy levels.
	Rank *int `json:"rank,omitempty"`

	// Stem is the file name the level was loaded from (without extension).
	Stem string `json:"stem,omitempty"`
}

func (l *Level) Validate() error {
	var problems []string
	if strings.TrimSpace(l.Name) == "" {
		problems = append(problems, "name is required")
	}
	if l.PercentToQualify < 1 || l.PercentToQualify > 100 {
		problems = append(problems, fmt.Sprintf("percentToQualify must be between 1 and 100 (got %v)", l.PercentToQualify))
	}
	if l.Rank != nil && *l.Rank < 1 {
		problems = append(problems, fmt.Sprintf("rank must be positive (got %d)", *l.Rank))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid level %s: %s", l.Stem, strings.Join(problems, ", "))
	}
	return nil
}

// Key identifies a level in URLs. The stem is used as it is unique within a list, numeric IDs
// are not guaranteed to be present.
func (l *Level) Key() string {
	return l.Stem
}

// QualifyingRecords returns the records that meet the level's qualification percentage.
func (l *Level) QualifyingRecords() []Record {
	out := make([]Record, 0, len(l.Records))
	for _, r := range l.Records {
		if r.Progress() >= l.PercentToQualify && r.Progress() <= 100 {
			out = append(out, r)
		}
	}
	return out
}

// Entry is a single item produced by a Source. Entries with Err set failed to load and must not
// be scored, but can still be displayed.
type Entry struct {
	Err   error
	Rank  *int
	Level *Level
}

func (e Entry) Scorable() bool {
	return e.Err == nil && e.Rank != nil && e.Level != nil
}

// RankedCount is the list length used for scoring: every entry holding a rank, including
// entries that failed to load.
func RankedCount(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Rank != nil {
			n++
		}
	}
	return n
}

func FindLevel(entries []Entry, key string) (*Level, error) {
	for _, e := range entries {
		if e.Level != nil && e.Err == nil && e.Level.Key() == key {
			return e.Level, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, key)
}

func intPtr(i int) *int {
	return &i
}
