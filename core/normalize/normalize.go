package normalize

import (
	"encoding/json"
	"fmt"
)

// Normalizer runs the repair stages and parse tiers over model output. The
// zero value is not usable; construct one with [New]. A Normalizer holds no
// per-call state and is safe for concurrent use.
type Normalizer struct {
	stages []Stage
	tiers  []tier
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStages replaces the repair pipeline. Stages run in the given order.
func WithStages(stages ...Stage) Option {
	return func(n *Normalizer) {
		n.stages = append([]Stage(nil), stages...)
	}
}

// New returns a Normalizer using [DefaultStages] and the strict, lenient and
// truncation-recovery tiers.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		stages: DefaultStages(),
		tiers:  defaultTiers(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize converts raw model output using the default pipeline.
//
// Example:
//
//	result := normalize.Normalize("Here you go:\n```json\n{name: 'x', tags: [1, 2,],}\n```")
//	if result.Parsed() {
//	    fmt.Println(result.Value) // map[name:x tags:[1 2]]
//	}
func Normalize(raw string) Result {
	return defaultNormalizer.Normalize(raw)
}

// Stages returns a copy of the repair pipeline.
func (n *Normalizer) Stages() []Stage {
	return append([]Stage(nil), n.stages...)
}

// Repair applies every stage in order and returns the rewritten text. The
// output is not guaranteed to parse.
func (n *Normalizer) Repair(raw string) string {
	text := raw
	for _, stage := range n.stages {
		text = stage.Apply(text)
	}
	return text
}

// Normalize repairs raw and tries each parse tier in order. The first success
// wins. Repair stops at the first stage boundary where the text is already
// valid JSON, so a valid document, fenced or not, reaches the strict tier
// without being rewritten. When all tiers fail the result carries raw
// untouched and the error of the last tier. Normalize never panics.
func (n *Normalizer) Normalize(raw string) Result {
	text, err := n.safeRepair(raw)
	if err != nil {
		return unparseable(raw, err)
	}

	var lastErr error
	for _, t := range n.tiers {
		value, err := attempt(t, text)
		if err == nil {
			return parsed(raw, value, t.tier)
		}
		lastErr = err
	}

	return unparseable(raw, lastErr)
}

func (n *Normalizer) safeRepair(raw string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("repair panicked: %v", r)
		}
	}()
	return n.repairUntilValid(raw), nil
}

// repairUntilValid is Repair with an exit before each stage once the text
// parses strictly.
func (n *Normalizer) repairUntilValid(raw string) string {
	text := raw
	for _, stage := range n.stages {
		if json.Valid([]byte(text)) {
			break
		}
		text = stage.Apply(text)
	}
	return text
}

func attempt(t tier, text string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("%s parse panicked: %v", t.tier, r)
		}
	}()
	return t.parse(text)
}
