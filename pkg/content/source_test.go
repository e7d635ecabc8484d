package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"
)

func writeJSON(t *testing.T, dir string, name string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path.Join(dir, name), b, 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeJSON(t, dir, ListFile, []string{"bloodbath", "broken", "sonic-wave.json"})
	writeJSON(t, dir, LegacyFile, []string{"cataclysm"})
	writeJSON(t, dir, PacksFile, []Pack{{Name: "Classics", Levels: []string{"bloodbath", "cataclysm"}}})
	writeJSON(t, dir, "bloodbath.json", Level{
		ID:               10565740,
		Name:             "Bloodbath",
		Author:           "Riot",
		Verifier:         "Riot",
		Verification:     "https://www.youtube.com/watch?v=abc123",
		PercentToQualify: 60,
		Records:          []Record{{User: "Knobbelboy", Percent: 100}},
	})
	writeJSON(t, dir, "sonic-wave.json", Level{Name: "Sonic Wave", Author: "Cyclic", PercentToQualify: 100})
	writeJSON(t, dir, "cataclysm.json", Level{Name: "Cataclysm", Author: "Ggb0y", PercentToQualify: 55})
	if err := os.WriteFile(path.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFileSourceFetch(t *testing.T) {
	src := NewFileSource(fixtureDir(t))
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries got %d", len(entries))
	}

	tests := []struct {
		name     string
		entry    Entry
		wantName string
		wantRank int
		wantErr  bool
	}{
		{name: "first ranked", entry: entries[0], wantName: "Bloodbath", wantRank: 1},
		{name: "malformed entry keeps rank", entry: entries[1], wantName: "broken", wantRank: 2, wantErr: true},
		{name: "extension is stripped", entry: entries[2], wantName: "Sonic Wave", wantRank: 3},
		{name: "legacy is unranked", entry: entries[3], wantName: "Cataclysm", wantRank: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.entry.Err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", tt.entry.Err, tt.wantErr)
			}
			if tt.entry.Level == nil || tt.entry.Level.Name != tt.wantName {
				t.Errorf("level = %+v, want name %s", tt.entry.Level, tt.wantName)
			}
			gotRank := 0
			if tt.entry.Rank != nil {
				gotRank = *tt.entry.Rank
			}
			if gotRank != tt.wantRank {
				t.Errorf("rank = %d, want %d", gotRank, tt.wantRank)
			}
		})
	}

	if got := RankedCount(entries); got != 3 {
		t.Errorf("RankedCount() = %d, want 3", got)
	}
}

func TestFileSourcePacks(t *testing.T) {
	src := NewFileSource(fixtureDir(t))
	packs, err := src.Packs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(packs) != 1 || packs[0].Name != "Classics" || len(packs[0].Levels) != 2 {
		t.Errorf("unexpected packs: %+v", packs)
	}
}

func TestFileSourceMissingOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, ListFile, []string{"a"})
	writeJSON(t, dir, "a.json", Level{Name: "A", PercentToQualify: 50})

	src := NewFileSource(dir)
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Err != nil {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	packs, err := src.Packs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(packs) != 0 {
		t.Errorf("expected no packs, got %d", len(packs))
	}
}

func TestFileSourceMissingList(t *testing.T) {
	_, err := NewFileSource(t.TempDir()).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, errMissing) {
		t.Errorf("expected missing error, got %s", err)
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.Dir(fixtureDir(t))))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", srv.Client())
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries got %d", len(entries))
	}
	if entries[0].Err != nil || entries[0].Level.ID != 10565740 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Err == nil {
		t.Error("expected broken entry to carry an error")
	}
	packs, err := src.Packs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(packs) != 1 {
		t.Errorf("expected 1 pack, got %d", len(packs))
	}
}

func TestLevelValidate(t *testing.T) {
	rank := 0
	tests := []struct {
		name    string
		level   Level
		wantErr bool
	}{
		{name: "valid", level: Level{Name: "A", PercentToQualify: 1}},
		{name: "valid full", level: Level{Name: "A", PercentToQualify: 100}},
		{name: "missing name", level: Level{PercentToQualify: 50}, wantErr: true},
		{name: "qualification too low", level: Level{Name: "A", PercentToQualify: 0}, wantErr: true},
		{name: "qualification too high", level: Level{Name: "A", PercentToQualify: 101}, wantErr: true},
		{name: "non positive rank", level: Level{Name: "A", PercentToQualify: 50, Rank: &rank}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.level.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQualifyingRecords(t *testing.T) {
	lvl := Level{
		PercentToQualify: 50,
		Records: []Record{
			{User: "a"},
			{User: "b", Percent: 49},
			{User: "c", Percent: 50},
			{User: "d", Percent: 120},
		},
	}
	got := lvl.QualifyingRecords()
	if len(got) != 2 || got[0].User != "a" || got[1].User != "c" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestFindLevel(t *testing.T) {
	entries := []Entry{
		{Err: errors.New("bad"), Level: &Level{Stem: "bad"}},
		{Level: &Level{Stem: "good", Name: "Good"}},
	}
	if lvl, err := FindLevel(entries, "good"); err != nil || lvl.Name != "Good" {
		t.Errorf("FindLevel(good) = %v, %v", lvl, err)
	}
	if _, err := FindLevel(entries, "bad"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("expected not found for broken entry, got %v", err)
	}
}

func TestNewSource(t *testing.T) {
	if _, err := NewSource("", "", nil); err == nil {
		t.Error("expected error without dir or url")
	}
	src, err := NewSource("dir", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Errorf("expected file source got %T", src)
	}
	src, err = NewSource("dir", "http://localhost/data", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Errorf("url should take precedence, got %T", src)
	}
}
