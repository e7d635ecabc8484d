package levels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/flag"
	"github.com/warmans/demonlist/pkg/packs"
	"github.com/warmans/demonlist/pkg/score"
)

func NewCheckCommand(logger *slog.Logger) *cobra.Command {

	var contentDir string
	var contentURL string
	var dump bool

	cmd := &cobra.Command{
		Use:   "content-check",
		Short: "validate the list content",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := content.NewSource(contentDir, contentURL, nil)
			if err != nil {
				return err
			}
			entries, err := src.Fetch(context.Background())
			if err != nil {
				return fmt.Errorf("failed to fetch list: %w", err)
			}
			defs, err := src.Packs(context.Background())
			if err != nil {
				return fmt.Errorf("failed to fetch packs: %w", err)
			}
			if dump {
				spew.Fdump(os.Stdout, entries, defs)
			}
			report := Check(entries, defs)
			report.Print(color.Output)

			logger.Info(
				"Content checked",
				slog.Int("levels", len(entries)),
				slog.Int("broken", len(report.Broken)),
				slog.Int("warnings", len(report.Warnings)),
			)
			if len(report.Broken) > 0 {
				return fmt.Errorf("%d levels failed to load", len(report.Broken))
			}
			return nil
		},
	}

	flag.StringVarEnv(cmd.Flags(), &contentDir, "", "content-dir", "./data", "directory containing _list.json and the level files")
	flag.StringVarEnv(cmd.Flags(), &contentURL, "", "content-url", "", "base URL to fetch the list from instead of content-dir")
	flag.BoolVarEnv(cmd.Flags(), &dump, "", "dump", false, "dump the loaded content")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}

type Problem struct {
	Level   string
	Message string
}

type Report struct {
	OK       []string
	Broken   []Problem
	Warnings []Problem
}

// Check reports levels that failed to load along with content that loads but looks wrong.
func Check(entries []content.Entry, defs []content.Pack) Report {
	r := Report{}
	seenIDs := map[int]string{}
	for _, e := range entries {
		label := score.RankLabel(e.Rank)
		if e.Level != nil {
			label = fmt.Sprintf("%s %s", label, e.Level.Key())
		}
		if e.Err != nil {
			r.Broken = append(r.Broken, Problem{Level: label, Message: e.Err.Error()})
			continue
		}
		lvl := e.Level
		if lvl.ID != 0 {
			if other, ok := seenIDs[lvl.ID]; ok {
				r.Warnings = append(r.Warnings, Problem{Level: label, Message: fmt.Sprintf("level id %d is also used by %s", lvl.ID, other)})
			}
			seenIDs[lvl.ID] = lvl.Key()
		}
		if lvl.Verifier == "" {
			r.Warnings = append(r.Warnings, Problem{Level: label, Message: "no verifier"})
		}
		if lvl.Verification == "" && lvl.Thumbnail == "" {
			r.Warnings = append(r.Warnings, Problem{Level: label, Message: "no verification or thumbnail, the default thumbnail will be shown"})
		}
		for k, rec := range lvl.Records {
			if rec.User == "" {
				r.Warnings = append(r.Warnings, Problem{Level: label, Message: fmt.Sprintf("record %d has no user", k)})
			}
			if rec.Progress() < lvl.PercentToQualify || rec.Progress() > 100 {
				r.Warnings = append(r.Warnings, Problem{Level: label, Message: fmt.Sprintf("record %d (%s%%) does not qualify", k, score.FormatPercent(rec.Progress()))})
			}
		}
		r.OK = append(r.OK, label)
	}
	for _, p := range packs.Resolve(defs, entries) {
		for _, m := range p.Missing {
			r.Warnings = append(r.Warnings, Problem{Level: m, Message: fmt.Sprintf("pack %s references a missing or unranked level", p.Name)})
		}
	}
	return r
}

func (r Report) Print(w io.Writer) {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)

	for _, l := range r.OK {
		ok.Fprintf(w, "OK    %s\n", l)
	}
	for _, p := range r.Warnings {
		warn.Fprintf(w, "WARN  %s: %s\n", p.Level, p.Message)
	}
	for _, p := range r.Broken {
		fail.Fprintf(w, "FAIL  %s: %s\n", p.Level, p.Message)
	}
}
