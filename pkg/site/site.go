package site

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Title      string   `yaml:"title"`
	Intro      string   `yaml:"intro"`
	Guidelines []string `yaml:"guidelines"`
	DiscordURL string   `yaml:"discord_url"`
}

func Default() Config {
	return Config{
		Title: "Demonlist",
		Intro: "All demonlist operations are carried out in accordance to our guidelines. Be sure to check them before submitting a record to ensure a flawless experience!",
		Guidelines: []string{
			"CBF usage is permitted.",
			"Make sure to include split audio tracks for a faster review of your record.",
			"For a level harder than Carmine Clutter, you must also include raw footage of your recording.",
			"Physics Bypass is not allowed and will get your record rejected.",
			"If you have Mega Hack, make sure to enable cheat indicator upon reaching the end screen, as well as the ingame clock.",
			"Make sure that the recording shows a few frames of the end card dropping down.",
		},
	}
}

// Load reads the site config from a YAML file. Empty fields keep their defaults and an empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open site config: %w", err)
	}
	defer f.Close()

	loaded := Config{}
	if err := yaml.NewDecoder(f).Decode(&loaded); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to decode site config %s: %w", path, err)
	}
	if strings.TrimSpace(loaded.Title) != "" {
		cfg.Title = loaded.Title
	}
	if strings.TrimSpace(loaded.Intro) != "" {
		cfg.Intro = loaded.Intro
	}
	if len(loaded.Guidelines) > 0 {
		cfg.Guidelines = loaded.Guidelines
	}
	cfg.DiscordURL = loaded.DiscordURL
	return cfg, nil
}
