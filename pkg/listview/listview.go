package listview

import (
	"errors"
	"fmt"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/score"
	"github.com/warmans/demonlist/pkg/thumbnail"
)

type State string

const (
	StateLoading State = "loading"
	StateListing State = "listing"
	StateDetail  State = "detail"
	StateFailed  State = "failed"
)

var ErrInvalidTransition = errors.New("invalid transition")

// View is the list page for a single visitor.
type View struct {
	state             State
	entries           []content.Entry
	selected          *content.Level
	err               error
	guidelinesVisible bool
}

func New(guidelinesVisible bool) *View {
	return &View{state: StateLoading, guidelinesVisible: guidelinesVisible}
}

func (v *View) State() State {
	return v.state
}

func (v *View) Loaded(entries []content.Entry) error {
	if v.state != StateLoading {
		return fmt.Errorf("%w: loaded while %s", ErrInvalidTransition, v.state)
	}
	v.entries = entries
	v.state = StateListing
	return nil
}

func (v *View) Failed(err error) {
	v.err = err
	v.state = StateFailed
}

func (v *View) Err() error {
	return v.err
}

func (v *View) Select(key string) error {
	if v.state != StateListing {
		return fmt.Errorf("%w: select while %s", ErrInvalidTransition, v.state)
	}
	lvl, err := content.FindLevel(v.entries, key)
	if err != nil {
		return err
	}
	v.selected = lvl
	v.state = StateDetail
	return nil
}

func (v *View) Back() error {
	if v.state != StateDetail {
		return fmt.Errorf("%w: back while %s", ErrInvalidTransition, v.state)
	}
	v.selected = nil
	v.state = StateListing
	return nil
}

func (v *View) Selected() *content.Level {
	return v.selected
}

func (v *View) GuidelinesVisible() bool {
	return v.guidelinesVisible
}

func (v *View) CloseGuidelines() {
	v.guidelinesVisible = false
}

type Row struct {
	Key          string
	RankLabel    string
	Rank         *int
	Name         string
	Author       string
	ScoreText    string
	Thumbnail    string
	Verification string
	Broken       bool
}

// Rows renders every entry, thumbnails are looked up by level key.
func (v *View) Rows(thumbnails map[string]string) []Row {
	listLength := content.RankedCount(v.entries)
	rows := make([]Row, 0, len(v.entries))
	for _, e := range v.entries {
		if e.Level == nil {
			continue
		}
		row := Row{
			Key:          e.Level.Key(),
			RankLabel:    score.RankLabel(e.Rank),
			Rank:         e.Rank,
			Name:         e.Level.Name,
			Author:       e.Level.Author,
			Verification: e.Level.Verification,
			Broken:       e.Err != nil,
			Thumbnail:    thumbnails[e.Level.Key()],
		}
		if e.Scorable() {
			row.ScoreText = score.ScoreText(e.Level, listLength)
		}
		rows = append(rows, row)
	}
	return rows
}

type RecordRow struct {
	User string
	Link string
	Odd  bool
}

type Detail struct {
	Level         *content.Level
	RankLabel     string
	Points        string
	EmbedURL      string
	Records       []RecordRow
	NumCompletion int
}

func (v *View) Detail() (*Detail, error) {
	if v.state != StateDetail || v.selected == nil {
		return nil, fmt.Errorf("%w: no level selected", ErrInvalidTransition)
	}
	lvl := v.selected
	d := &Detail{
		Level:         lvl,
		RankLabel:     score.RankLabel(lvl.Rank),
		EmbedURL:      thumbnail.YouTubeEmbedURL(lvl.Verification),
		NumCompletion: len(lvl.Records),
	}
	if points, ok := score.LevelScore(lvl, 100, content.RankedCount(v.entries)); ok {
		d.Points = fmt.Sprintf("%.2f", points)
	} else {
		d.Points = "-"
	}
	for k, r := range lvl.Records {
		user := r.User
		if user == "" {
			user = "-"
		}
		d.Records = append(d.Records, RecordRow{User: user, Link: r.Link, Odd: k%2 != 0})
	}
	return d, nil
}
