package thumbnail

const (
	DefaultPath = "/assets/default-thumbnail.png"

	// MinWidth is the narrowest image accepted as a real thumbnail. YouTube serves a 120px
	// grey placeholder instead of a 404 for some missing resolutions.
	MinWidth = 300
)

// Outcome of loading the current candidate.
type Outcome struct {
	Failed bool
	// Width is the detected width of a loaded image, or 0 when it is unknown.
	Width int
}

func Failure() Outcome {
	return Outcome{Failed: true}
}

func Loaded(width int) Outcome {
	return Outcome{Width: width}
}

func (o Outcome) acceptable() bool {
	if o.Failed {
		return false
	}
	return o.Width == 0 || o.Width >= MinWidth
}

type Step struct {
	// Index of the candidate to show, len(candidates) once the default is in use.
	Index    int
	Src      string
	Terminal bool
}

// Next decides what to show after the candidate at index produced outcome. Once the candidates
// are exhausted the default placeholder is returned and the step is terminal.
func Next(index int, candidates []string, outcome Outcome) Step {
	if index < 0 {
		index = 0
	}
	if index >= len(candidates) {
		return Step{Index: len(candidates), Src: DefaultPath, Terminal: true}
	}
	if outcome.acceptable() {
		return Step{Index: index, Src: candidates[index], Terminal: true}
	}
	if index+1 < len(candidates) {
		return Step{Index: index + 1, Src: candidates[index+1]}
	}
	return Step{Index: len(candidates), Src: DefaultPath, Terminal: true}
}

// Chain tracks the progress through a candidate list for a single image.
type Chain struct {
	candidates []string
	step       Step
}

func NewChain(candidates []string) *Chain {
	if len(candidates) == 0 {
		return &Chain{step: Step{Src: DefaultPath, Terminal: true}}
	}
	return &Chain{candidates: candidates, step: Step{Index: 0, Src: candidates[0]}}
}

func (c *Chain) Src() string {
	return c.step.Src
}

func (c *Chain) Done() bool {
	return c.step.Terminal
}

// Report feeds the outcome of loading Src and returns true if Src changed. Reports after the
// chain is done are ignored.
func (c *Chain) Report(o Outcome) bool {
	if c.step.Terminal {
		return false
	}
	prev := c.step.Src
	c.step = Next(c.step.Index, c.candidates, o)
	return c.step.Src != prev
}
