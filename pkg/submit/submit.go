package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/score"
)

type Status int

const (
	StatusInvalid Status = iota
	StatusSent
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusFailed:
		return "failed"
	default:
		return "invalid"
	}
}

type Result struct {
	Status  Status
	Message string
	ID      string
}

// Notification is the record forwarded to the moderators.
type Notification struct {
	ID         string
	Level      string
	Rank       string
	Holder     string
	Percentage float64
	Footage    string
	RawFootage string
	Notes      string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

func NewSubmitter(logger *slog.Logger, src content.Source, notifier Notifier) *Submitter {
	return &Submitter{logger: logger, src: src, notifier: notifier}
}

type Submitter struct {
	logger   *slog.Logger
	src      content.Source
	notifier Notifier
}

// Submit validates the form and forwards it. Invalid forms never reach the notifier. The form and
// attempts are only reset once delivery is confirmed.
func (s *Submitter) Submit(ctx context.Context, attempts *Attempts, form *Form) Result {
	if !form.Valid() {
		attempts.Fail()
		return Result{Status: StatusInvalid, Message: attempts.Message}
	}

	entries, err := s.src.Fetch(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch list for submission", slog.String("err", err.Error()))
		return Result{Status: StatusFailed, Message: "Could not load the list, please try again later."}
	}
	lvl, err := content.FindLevel(entries, form.LevelID)
	if err != nil {
		attempts.Fail()
		return Result{Status: StatusInvalid, Message: attempts.Message}
	}

	n := Notification{
		ID:         uuid.NewString(),
		Level:      lvl.Name,
		Rank:       score.RankLabel(lvl.Rank),
		Holder:     form.Holder,
		Percentage: form.Percentage,
		Footage:    form.Footage,
		RawFootage: form.RawFootage,
		Notes:      form.Notes,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error(
			"Failed to deliver submission",
			slog.String("id", n.ID),
			slog.String("level", n.Level),
			slog.String("err", err.Error()),
		)
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Could not send the record, please try again later (%s).", n.ID), ID: n.ID}
	}

	s.logger.Info("Submission sent", slog.String("id", n.ID), slog.String("level", n.Level))
	attempts.Reset()
	form.Reset()
	return Result{Status: StatusSent, Message: SentMessage, ID: n.ID}
}

var ErrNotConfigured = errors.New("submissions are not configured")

// DisabledNotifier rejects every submission, used when no webhook is configured.
type DisabledNotifier struct{}

func (DisabledNotifier) Notify(ctx context.Context, n Notification) error {
	return ErrNotConfigured
}
