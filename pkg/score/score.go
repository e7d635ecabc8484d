package score

import (
	"fmt"
	"math"

	"github.com/warmans/demonlist/pkg/content"
)

const (
	maxPoints = 200.0
	curve     = 24.9975
	exponent  = 0.4

	// ranks are stretched onto this many positions so that the last level of any list is worth
	// roughly the same.
	referenceLength = 150.0
)

const LegacyLabel = "Legacy"

// Score is the number of points awarded for reaching percent on the level at rank. Callers must
// ensure rank >= 1, listLength >= 1 and percentToQualify <= percent <= 100.
func Score(rank int, percent float64, percentToQualify float64, listLength int) float64 {
	position := float64(rank-1) * referenceLength / float64(listLength)
	base := math.Max(maxPoints-curve*math.Pow(position, exponent), 0)

	progress := (percent - (percentToQualify - 1)) / (100 - (percentToQualify - 1))
	s := base * progress
	if percent != 100 {
		s = s - s/3
	}
	return round(s, 3)
}

func RankLabel(rank *int) string {
	if rank == nil {
		return LegacyLabel
	}
	return fmt.Sprintf("#%d", *rank)
}

// LevelScore returns false for levels without a rank.
func LevelScore(lvl *content.Level, percent float64, listLength int) (float64, bool) {
	if lvl == nil || lvl.Rank == nil {
		return 0, false
	}
	return Score(*lvl.Rank, percent, lvl.PercentToQualify, listLength), true
}

func ScoreText(lvl *content.Level, listLength int) string {
	base, ok := LevelScore(lvl, 100, listLength)
	if !ok {
		return ""
	}
	if lvl.PercentToQualify == 100 {
		return fmt.Sprintf("%.2f points", base)
	}
	req, _ := LevelScore(lvl, lvl.PercentToQualify, listLength)
	return fmt.Sprintf("%.2f (%s%%) - %.2f (100%%) points", req, FormatPercent(lvl.PercentToQualify), base)
}

// FormatPercent drops the decimals from whole percentages.
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%d", int(p))
	}
	return fmt.Sprintf("%.2f", p)
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
