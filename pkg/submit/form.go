package submit

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	GenericMessage = "Please fill in all required fields."
	SentMessage    = "Record submitted!"
)

// escalation replaces the validation message when the attempt count hits one of these values.
var escalation = map[int]string{
	3:    "Please fill in all required fields. If you are having trouble, please contact us on Discord.",
	6:    "boi what are you doing",
	10:   "ok you are just trolling now",
	20:   "you are just wasting your time",
	40:   "you are wasting our time",
	60:   "please stop lol",
	80:   "ok i am done lol",
	100:  "you clicked the button 100 times, good job.",
	200:  "you clicked the button 200 times, good job.",
	500:  "do you need help?",
	600:  "you might need help.",
	800:  "bro stop what the hell are you doing",
	1000: "please stop, go outside or something",
}

type Form struct {
	LevelID    string
	Holder     string
	Percentage float64
	Footage    string
	RawFootage string
	Notes      string
}

func (f *Form) Valid() bool {
	return f.LevelID != "" &&
		strings.TrimSpace(f.Holder) != "" &&
		strings.TrimSpace(f.Footage) != "" &&
		f.Percentage >= 0 && f.Percentage <= 100
}

func (f *Form) Reset() {
	*f = Form{}
}

// FormFromValues reads a posted form. An unparsable percentage is kept out of range so the form
// fails validation.
func FormFromValues(v url.Values) Form {
	return Form{
		LevelID:    strings.TrimSpace(v.Get("level")),
		Holder:     v.Get("holder"),
		Percentage: ParsePercentage(v.Get("percentage")),
		Footage:    v.Get("footage"),
		RawFootage: v.Get("rawfootage"),
		Notes:      v.Get("notes"),
	}
}

func ParsePercentage(raw string) float64 {
	pct, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return -1
	}
	return pct
}

// Attempts tracks invalid submissions within one session.
type Attempts struct {
	Count   int
	Message string
}

func (a *Attempts) Fail() {
	a.Count++
	if msg, ok := escalation[a.Count]; ok {
		a.Message = msg
		return
	}
	if a.Message == "" {
		a.Message = GenericMessage
	}
}

func (a *Attempts) Reset() {
	a.Count = 0
	a.Message = ""
}
