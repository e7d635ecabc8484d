package levels

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/warmans/demonlist/pkg/content"
)

func rank(i int) *int {
	return &i
}

func TestCheck(t *testing.T) {
	good := &content.Level{ID: 1, Name: "Good", Stem: "good", Verifier: "v", Verification: "https://youtu.be/x", PercentToQualify: 50, Records: []content.Record{{User: "a", Percent: 60}}}
	dupe := &content.Level{ID: 1, Name: "Dupe", Stem: "dupe", Verifier: "v", Thumbnail: "dupe.png", PercentToQualify: 50, Records: []content.Record{{User: "", Percent: 40}}}
	entries := []content.Entry{
		{Rank: rank(1), Level: good},
		{Rank: rank(2), Level: dupe},
		{Rank: rank(3), Err: errors.New("broken json")},
	}
	report := Check(entries, []content.Pack{{Name: "Pack", Levels: []string{"good", "nope"}}})

	if len(report.OK) != 2 {
		t.Errorf("expected 2 ok levels, got %v", report.OK)
	}
	if len(report.Broken) != 1 || report.Broken[0].Level != "#3" {
		t.Errorf("unexpected broken levels: %v", report.Broken)
	}
	// duplicate id, empty record user, non-qualifying record, missing pack level
	if len(report.Warnings) != 4 {
		t.Errorf("expected 4 warnings got %d: %v", len(report.Warnings), report.Warnings)
	}

	buff := &bytes.Buffer{}
	report.Print(buff)
	if !strings.Contains(buff.String(), "FAIL  #3: broken json") {
		t.Errorf("unexpected output: %s", buff.String())
	}
}

func TestRandomList(t *testing.T) {
	ranked, legacy, levels := RandomList(gofakeit.New(1), 10, 3)
	if len(ranked) != 10 || len(legacy) != 3 || len(levels) != 13 {
		t.Fatalf("unexpected sizes: %d %d %d", len(ranked), len(legacy), len(levels))
	}
	for stem, lvl := range levels {
		lvl.Stem = stem
		if err := lvl.Validate(); err != nil {
			t.Errorf("generated invalid level: %s", err)
		}
		for _, r := range lvl.Records {
			if r.Progress() < lvl.PercentToQualify {
				t.Errorf("generated non-qualifying record on %s", stem)
			}
		}
	}
	if got := RandomPacks(gofakeit.New(1), ranked); len(got) != 3 {
		t.Errorf("expected 3 packs got %d", len(got))
	}
}
