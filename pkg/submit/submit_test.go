package submit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/warmans/demonlist/pkg/content"
)

type staticSource struct {
	entries []content.Entry
	err     error
}

func (s staticSource) Fetch(ctx context.Context) ([]content.Entry, error) {
	return s.entries, s.err
}

func (s staticSource) Packs(ctx context.Context) ([]content.Pack, error) {
	return nil, nil
}

type fakeNotifier struct {
	calls []Notification
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, n Notification) error {
	f.calls = append(f.calls, n)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSource() staticSource {
	one := 1
	return staticSource{entries: []content.Entry{
		{Rank: &one, Level: &content.Level{Stem: "bloodbath", Name: "Bloodbath", Rank: &one}},
	}}
}

func validForm() Form {
	return Form{LevelID: "bloodbath", Holder: "zoink", Percentage: 100, Footage: "https://youtu.be/abc", Notes: "gg"}
}

func TestFormValid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *Form)
		want   bool
	}{
		{name: "valid", modify: func(f *Form) {}, want: true},
		{name: "no level", modify: func(f *Form) { f.LevelID = "" }, want: false},
		{name: "blank holder", modify: func(f *Form) { f.Holder = "  " }, want: false},
		{name: "no footage", modify: func(f *Form) { f.Footage = "" }, want: false},
		{name: "negative", modify: func(f *Form) { f.Percentage = -1 }, want: false},
		{name: "over 100", modify: func(f *Form) { f.Percentage = 100.5 }, want: false},
		{name: "zero", modify: func(f *Form) { f.Percentage = 0 }, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			if got := f.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormFromValues(t *testing.T) {
	f := FormFromValues(url.Values{"level": {" bloodbath "}, "holder": {"zoink"}, "percentage": {"abc"}, "footage": {"x"}})
	if f.LevelID != "bloodbath" || f.Holder != "zoink" {
		t.Errorf("unexpected form %+v", f)
	}
	if f.Valid() {
		t.Error("unparsable percentage must be invalid")
	}
}

func TestAttemptsEscalation(t *testing.T) {
	a := &Attempts{}
	want := map[int]string{
		1:    GenericMessage,
		2:    GenericMessage,
		3:    "Please fill in all required fields. If you are having trouble, please contact us on Discord.",
		4:    "Please fill in all required fields. If you are having trouble, please contact us on Discord.",
		6:    "boi what are you doing",
		10:   "ok you are just trolling now",
		11:   "ok you are just trolling now",
		20:   "you are just wasting your time",
		100:  "you clicked the button 100 times, good job.",
		1000: "please stop, go outside or something",
		1001: "please stop, go outside or something",
	}
	for i := 1; i <= 1001; i++ {
		a.Fail()
		if a.Count != i {
			t.Fatalf("count should increase by exactly one, got %d at %d", a.Count, i)
		}
		if msg, ok := want[i]; ok && a.Message != msg {
			t.Errorf("attempt %d: got %q want %q", i, a.Message, msg)
		}
	}
	a.Reset()
	if a.Count != 0 || a.Message != "" {
		t.Errorf("reset failed: %+v", a)
	}
}

func TestSubmitInvalid(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSubmitter(testLogger(), testSource(), n)
	a := &Attempts{}
	f := validForm()
	f.Holder = ""
	for i := 0; i < 3; i++ {
		res := s.Submit(context.Background(), a, &f)
		if res.Status != StatusInvalid {
			t.Fatalf("expected invalid got %s", res.Status)
		}
	}
	if a.Count != 3 || !strings.Contains(a.Message, "contact us on Discord") {
		t.Errorf("unexpected attempts %+v", a)
	}
	if len(n.calls) != 0 {
		t.Error("invalid forms must not be sent")
	}
}

func TestSubmitUnknownLevel(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSubmitter(testLogger(), testSource(), n)
	f := validForm()
	f.LevelID = "nope"
	if res := s.Submit(context.Background(), &Attempts{}, &f); res.Status != StatusInvalid {
		t.Errorf("expected invalid got %s", res.Status)
	}
	if len(n.calls) != 0 {
		t.Error("unknown levels must not be sent")
	}
}

func TestSubmitSent(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSubmitter(testLogger(), testSource(), n)
	a := &Attempts{Count: 4, Message: "x"}
	f := validForm()

	res := s.Submit(context.Background(), a, &f)
	if res.Status != StatusSent || res.ID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(n.calls) != 1 {
		t.Fatalf("expected one notification got %d", len(n.calls))
	}
	got := n.calls[0]
	if got.Level != "Bloodbath" || got.Rank != "#1" || got.Holder != "zoink" || got.Notes != "gg" || got.ID != res.ID {
		t.Errorf("unexpected notification %+v", got)
	}
	if f != (Form{}) {
		t.Errorf("form should be reset: %+v", f)
	}
	if *a != (Attempts{}) {
		t.Errorf("attempts should be reset: %+v", a)
	}
}

func TestSubmitFailed(t *testing.T) {
	n := &fakeNotifier{err: errors.New("boom")}
	s := NewSubmitter(testLogger(), testSource(), n)
	f := validForm()
	res := s.Submit(context.Background(), &Attempts{}, &f)
	if res.Status != StatusFailed || res.Message == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f != validForm() {
		t.Error("fields must be kept when delivery fails")
	}
}

func TestSubmitFetchFailed(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSubmitter(testLogger(), staticSource{err: errors.New("offline")}, n)
	f := validForm()
	if res := s.Submit(context.Background(), &Attempts{}, &f); res.Status != StatusFailed {
		t.Errorf("expected failed got %s", res.Status)
	}
	if len(n.calls) != 0 {
		t.Error("nothing should be sent")
	}
}

type fakeExecutor struct {
	id, token string
	wait      bool
	params    *discordgo.WebhookParams
	err       error
}

func (f *fakeExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.id, f.token, f.wait, f.params = webhookID, token, wait, data
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "1"}, nil
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		url       string
		id, token string
		wantErr   bool
	}{
		{url: "https://discord.com/api/webhooks/123/abc-def", id: "123", token: "abc-def"},
		{url: "https://discord.com/api/v10/webhooks/123/abc/", id: "123", token: "abc"},
		{url: "https://discord.com/api/webhooks/123", wantErr: true},
		{url: "://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, token, err := ParseWebhookURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWebhook) {
					t.Errorf("expected ErrInvalidWebhook got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if id != tt.id || token != tt.token {
				t.Errorf("got %s/%s", id, token)
			}
		})
	}
}

func TestDiscordNotifier(t *testing.T) {
	exec := &fakeExecutor{}
	d, err := NewDiscordNotifier(exec, "https://discord.com/api/webhooks/123/tok", "demonlist")
	if err != nil {
		t.Fatal(err)
	}
	n := Notification{ID: "abc", Level: "Bloodbath", Rank: "#1", Holder: "zoink", Percentage: 56.5, Footage: "https://youtu.be/x", RawFootage: "https://raw"}
	if err := d.Notify(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	if exec.id != "123" || exec.token != "tok" || !exec.wait {
		t.Errorf("unexpected call %+v", exec)
	}
	if !strings.Contains(exec.params.Content, "Bloodbath") || !strings.Contains(exec.params.Content, "56.50%") {
		t.Errorf("content should carry the record: %q", exec.params.Content)
	}
	if len(exec.params.Embeds) != 1 || len(exec.params.Embeds[0].Fields) != 4 {
		t.Errorf("unexpected embeds %+v", exec.params.Embeds)
	}

	exec.err = errors.New("429")
	if err := d.Notify(context.Background(), n); err == nil {
		t.Error("expected error")
	}
}

func TestWebhookParamsEmbedURL(t *testing.T) {
	tests := []struct {
		footage string
		want    string
	}{
		{footage: "https://youtu.be/x", want: "https://youtu.be/x"},
		{footage: " http://example.com/clip ", want: "http://example.com/clip"},
		{footage: "see my channel", want: ""},
		{footage: "youtu.be/x", want: ""},
		{footage: "ftp://example.com/clip", want: ""},
		{footage: "https://", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.footage, func(t *testing.T) {
			p := webhookParams("demonlist", Notification{Level: "Bloodbath", Holder: "zoink", Footage: tt.footage})
			if got := p.Embeds[0].URL; got != tt.want {
				t.Errorf("embed URL = %q, want %q", got, tt.want)
			}
			if got := p.Embeds[0].Fields[2].Value; got != tt.footage {
				t.Errorf("footage field = %q, want it unchanged", got)
			}
		})
	}
}

func TestWebhookParamsTruncatesLongValues(t *testing.T) {
	p := webhookParams("demonlist", Notification{
		Level:   strings.Repeat("L", 300),
		Holder:  strings.Repeat("h", 2500),
		Footage: "https://youtu.be/x",
		Notes:   strings.Repeat("é", 1500),
	})
	if n := len([]rune(p.Content)); n > maxContent {
		t.Errorf("content has %d characters", n)
	}
	if n := len([]rune(p.Embeds[0].Title)); n > maxTitle {
		t.Errorf("title has %d characters", n)
	}
	for _, f := range p.Embeds[0].Fields {
		if n := len([]rune(f.Value)); n > maxFieldValue {
			t.Errorf("field %s has %d characters", f.Name, n)
		}
	}
	notes := p.Embeds[0].Fields[len(p.Embeds[0].Fields)-1]
	if notes.Name != "Notes" || !strings.HasSuffix(notes.Value, "...") || !strings.HasPrefix(notes.Value, "éé") {
		t.Errorf("unexpected notes field %+v", notes)
	}
}
