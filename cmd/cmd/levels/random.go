package levels

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/flag"
)

func NewRandomCommand(logger *slog.Logger) *cobra.Command {

	var contentDir string
	var listLength int64
	var legacyLength int64
	var seed int64

	cmd := &cobra.Command{
		Use:   "content-random",
		Short: "generate a sample list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(contentDir, 0755); err != nil {
				return err
			}
			faker := gofakeit.New(uint64(seed))
			ranked, legacy, levels := RandomList(faker, int(listLength), int(legacyLength))

			for stem, lvl := range levels {
				if err := writeJSON(path.Join(contentDir, stem+".json"), lvl); err != nil {
					return err
				}
			}
			if err := writeJSON(path.Join(contentDir, content.ListFile), ranked); err != nil {
				return err
			}
			if err := writeJSON(path.Join(contentDir, content.LegacyFile), legacy); err != nil {
				return err
			}
			if err := writeJSON(path.Join(contentDir, content.PacksFile), RandomPacks(faker, ranked)); err != nil {
				return err
			}
			logger.Info("Generated list", slog.String("dir", contentDir), slog.Int("levels", len(levels)))
			return nil
		},
	}

	flag.StringVarEnv(cmd.Flags(), &contentDir, "", "content-dir", "./var/data", "")
	flag.Int64VarEnv(cmd.Flags(), &listLength, "", "length", 30, "number of ranked levels")
	flag.Int64VarEnv(cmd.Flags(), &legacyLength, "", "legacy-length", 5, "number of legacy levels")
	flag.Int64VarEnv(cmd.Flags(), &seed, "", "seed", 0, "random seed (0 for random)")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}

// RandomList builds a fake list with unique stems. Levels are keyed by stem.
func RandomList(faker *gofakeit.Faker, ranked int, legacy int) ([]string, []string, map[string]content.Level) {
	levels := make(map[string]content.Level, ranked+legacy)
	stems := make([]string, 0, ranked+legacy)
	for len(stems) < ranked+legacy {
		name := strings.Join(strings.Fields(faker.Adjective()+" "+faker.Noun()), " ")
		stem := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
		if _, exists := levels[stem]; exists {
			continue
		}
		levels[stem] = randomLevel(faker, name)
		stems = append(stems, stem)
	}
	return stems[:ranked], stems[ranked:], levels
}

func randomLevel(faker *gofakeit.Faker, name string) content.Level {
	ptq := float64(faker.IntRange(40, 100))
	verifier := faker.Username()
	lvl := content.Level{
		ID:               faker.IntRange(100000, 120000000),
		Name:             strings.ToUpper(name[:1]) + name[1:],
		Author:           faker.Username(),
		Verifier:         verifier,
		Verification:     "https://www.youtube.com/watch?v=" + faker.LetterN(11),
		PercentToQualify: ptq,
		Password:         fmt.Sprintf("%06d", faker.IntRange(0, 999999)),
		Records:          []content.Record{},
	}
	lvl.Creators = []string{lvl.Author}
	for i := 0; i < faker.IntRange(0, 8); i++ {
		rec := content.Record{
			User: faker.Username(),
			Link: "https://youtu.be/" + faker.LetterN(11),
			Hz:   faker.RandomInt([]int{60, 144, 240, 360}),
		}
		if ptq < 100 && faker.Bool() {
			rec.Percent = float64(faker.IntRange(int(ptq), 99))
		}
		lvl.Records = append(lvl.Records, rec)
	}
	return lvl
}

func RandomPacks(faker *gofakeit.Faker, ranked []string) []content.Pack {
	out := []content.Pack{}
	for start := 0; start+3 <= len(ranked); start += 3 {
		out = append(out, content.Pack{
			Name:   faker.Color() + " Pack",
			Colour: faker.HexColor(),
			Levels: append([]string{}, ranked[start:start+3]...),
		})
	}
	return out
}

func writeJSON(p string, v any) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
