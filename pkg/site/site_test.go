package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		want    func() Config
		wantErr bool
	}{
		{name: "no path", path: "", want: Default},
		{name: "empty file", path: write("empty.yaml", ""), want: Default},
		{
			name: "overrides",
			path: write("site.yaml", "title: Bad Demonlist\nguidelines:\n  - No cheating.\ndiscord_url: https://discord.gg/x\n"),
			want: func() Config {
				c := Default()
				c.Title = "Bad Demonlist"
				c.Guidelines = []string{"No cheating."}
				c.DiscordURL = "https://discord.gg/x"
				return c
			},
		},
		{name: "missing file", path: filepath.Join(dir, "nope.yaml"), wantErr: true},
		{name: "bad yaml", path: write("bad.yaml", "title: [unterminated"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want(), got); diff != "" {
				t.Errorf("unexpected config: %s", diff)
			}
		})
	}
}
