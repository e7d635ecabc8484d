package command

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/leaderboard"
)

func rank(i int) *int {
	return &i
}

func testEntries() []content.Entry {
	return []content.Entry{
		{Rank: rank(1), Level: &content.Level{
			ID: 10565740, Stem: "bloodbath", Name: "Bloodbath", Author: "Riot", Verifier: "Riot",
			Verification: "https://youtu.be/abc123", PercentToQualify: 60, Rank: rank(1),
			Records: []content.Record{{User: "Knobbelboy", Link: "https://youtu.be/x"}, {User: "", Percent: 70}},
		}},
		{Rank: rank(2), Level: &content.Level{Stem: "sonic-wave", Name: "Sonic Wave", Author: "Cyclic", Verifier: "Sunix", PercentToQualify: 100, Rank: rank(2)}},
		{Err: errors.New("broken"), Rank: rank(3), Level: &content.Level{Stem: "bad", Name: "bad", Rank: rank(3)}},
		{Level: &content.Level{Stem: "cataclysm", Name: "Cataclysm", Author: "Ggb0y", PercentToQualify: 55}},
	}
}

func testCommand() *Demonlist {
	return NewDemonlistCommand(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, "https://list.example.com/")
}

func TestLevelResponse(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantTitle string
		wantErr   bool
	}{
		{name: "by stem", query: "sonic-wave", wantTitle: "#2 - Sonic Wave"},
		{name: "by name", query: "bloodbath", wantTitle: "#1 - Bloodbath"},
		{name: "fuzzy", query: "blodbath", wantTitle: "#1 - Bloodbath"},
		{name: "legacy", query: "cataclysm", wantTitle: "Legacy - Cataclysm"},
		{name: "broken levels are not found", query: "bad", wantErr: true},
		{name: "unknown", query: "zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := testCommand().levelResponse(testEntries(), tt.query)
			if tt.wantErr {
				if !errors.Is(err, content.ErrLevelNotFound) {
					t.Errorf("expected not found got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(data.Embeds) != 1 || data.Embeds[0].Title != tt.wantTitle {
				t.Errorf("unexpected embeds %+v", data.Embeds)
			}
		})
	}
}

func TestLevelResponseDetails(t *testing.T) {
	data, err := testCommand().levelResponse(testEntries(), "bloodbath")
	if err != nil {
		t.Fatal(err)
	}
	embed := data.Embeds[0]
	if embed.URL != "https://list.example.com/?level=bloodbath" {
		t.Errorf("unexpected url %s", embed.URL)
	}
	if embed.Image == nil || embed.Image.URL != "https://img.youtube.com/vi/abc123/hqdefault.jpg" {
		t.Errorf("unexpected image %+v", embed.Image)
	}
	foundPoints := false
	for _, f := range embed.Fields {
		if f.Name == "Points" {
			foundPoints = strings.HasSuffix(f.Value, "200.00 (100%) points")
		}
	}
	if !foundPoints {
		t.Errorf("expected points field in %+v", embed.Fields)
	}
	row, ok := data.Components[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("unexpected components %+v", data.Components)
	}
	if btn := row.Components[0].(discordgo.Button); btn.CustomID != "dmn:records:bloodbath" {
		t.Errorf("unexpected button %+v", btn)
	}
}

func TestLevelChoices(t *testing.T) {
	choices := levelChoices(testEntries(), "wave")
	if len(choices) != 1 || choices[0].Value != "sonic-wave" || choices[0].Name != "#2 Sonic Wave" {
		t.Errorf("unexpected choices %+v", choices)
	}
	if all := levelChoices(testEntries(), ""); len(all) != 3 {
		t.Errorf("expected every loaded level, got %d", len(all))
	}
}

func TestTopResponse(t *testing.T) {
	rows := leaderboard.Build(testEntries(), nil)
	data := topResponse(rows, 1)
	if !strings.HasPrefix(data.Content, "```\n1. ") || strings.Count(data.Content, "\n") != 2 {
		t.Errorf("unexpected content %q", data.Content)
	}
	if empty := topResponse(nil, 0); !strings.Contains(empty.Content, "No records yet.") {
		t.Errorf("unexpected content %q", empty.Content)
	}
}

func TestPlayerResponse(t *testing.T) {
	rows := leaderboard.Build(testEntries(), nil)
	data, err := playerResponse(rows, "sunix")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(data.Content, "Sunix") || !strings.Contains(data.Content, "1 verified") {
		t.Errorf("unexpected content %q", data.Content)
	}
	if _, err := playerResponse(rows, "nobody"); err == nil {
		t.Error("expected error")
	}
}

func TestRecordsText(t *testing.T) {
	lvl := testEntries()[0].Level
	got := recordsText(lvl)
	want := "**Bloodbath** records (60% or better to qualify)\nKnobbelboy 100% <https://youtu.be/x>\n- 70%\n"
	if got != want {
		t.Errorf("recordsText() = %q, want %q", got, want)
	}
}
