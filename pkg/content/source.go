package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	ListFile   = "_list.json"
	LegacyFile = "_legacy.json"
	PacksFile  = "_packs.json"
)

// maxConcurrentLoads bounds the number of level files read at the same time.
const maxConcurrentLoads = 8

var errMissing = errors.New("missing")

type Pack struct {
	Name   string   `json:"name"`
	Colour string   `json:"colour,omitempty"`
	Levels []string `json:"levels"`
}

type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
	Packs(ctx context.Context) ([]Pack, error)
}

// opener abstracts where the list files come from (a directory or an HTTP base URL). Missing
// optional files are reported with errMissing.
type opener func(ctx context.Context, name string) (io.ReadCloser, error)

func fetchEntries(ctx context.Context, open opener) ([]Entry, error) {
	ranked, err := readStems(ctx, open, ListFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ListFile, err)
	}
	legacy, err := readStems(ctx, open, LegacyFile)
	if err != nil && !errors.Is(err, errMissing) {
		return nil, fmt.Errorf("failed to read %s: %w", LegacyFile, err)
	}

	entries := make([]Entry, len(ranked)+len(legacy))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentLoads)
	for k, stem := range append(ranked, legacy...) {
		var rank *int
		if k < len(ranked) {
			rank = intPtr(k + 1)
		}
		eg.Go(func() error {
			entries[k] = loadEntry(egCtx, open, stem, rank)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func loadEntry(ctx context.Context, open opener, stem string, rank *int) Entry {
	stub := &Level{Name: stem, Stem: stem, Rank: rank}

	f, err := open(ctx, stem+".json")
	if err != nil {
		return Entry{Err: fmt.Errorf("failed to open level %s: %w", stem, err), Rank: rank, Level: stub}
	}
	defer f.Close()

	lvl := &Level{}
	if err := json.NewDecoder(f).Decode(lvl); err != nil {
		return Entry{Err: fmt.Errorf("failed to decode level %s: %w", stem, err), Rank: rank, Level: stub}
	}
	lvl.Stem = stem
	lvl.Rank = rank
	if err := lvl.Validate(); err != nil {
		return Entry{Err: err, Rank: rank, Level: stub}
	}
	return Entry{Rank: rank, Level: lvl}
}

func fetchPacks(ctx context.Context, open opener) ([]Pack, error) {
	f, err := open(ctx, PacksFile)
	if err != nil {
		if errors.Is(err, errMissing) {
			return []Pack{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", PacksFile, err)
	}
	defer f.Close()

	packs := []Pack{}
	if err := json.NewDecoder(f).Decode(&packs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", PacksFile, err)
	}
	return packs, nil
}

func readStems(ctx context.Context, open opener, name string) ([]string, error) {
	f, err := open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stems []string
	if err := json.NewDecoder(f).Decode(&stems); err != nil {
		return nil, err
	}
	for k, v := range stems {
		stems[k] = strings.TrimSuffix(strings.TrimSpace(v), ".json")
	}
	return stems, nil
}

// NewSource reads from baseURL when set, otherwise from dir.
func NewSource(dir string, baseURL string, client *http.Client) (Source, error) {
	switch {
	case baseURL != "":
		return NewHTTPSource(baseURL, client), nil
	case dir != "":
		return NewFileSource(dir), nil
	default:
		return nil, errors.New("either a content directory or a content url is required")
	}
}
