package parser

import (
	"regexp"
)

// Default markers and patterns used for question/answer formatted text.
const (
	DefaultFrontPrefix = "Question: "
	DefaultBackPrefix  = "Answer: "
	DefaultFrontRegex  = `Question: ([^\n]+)\nAnswer:`
	DefaultBackRegex   = `Answer: ([^\n]+)(?:\n|$)`
)

// lineCapture matches the text on one line and is placed between the
// escaped prefix and suffix when patterns are derived from literals.
const lineCapture = `([^\n]+)`

// Options control how front and back text is located in imported content.
//
// In prefix/suffix mode (UseRegex false) FrontRegex and BackRegex are derived
// from the literal markers and must not be edited directly; use the setters so
// the patterns stay in sync. In raw-regex mode the patterns are used as given.
type Options struct {
	FrontPrefix string `json:"frontPrefix"`
	FrontSuffix string `json:"frontSuffix"`
	BackPrefix  string `json:"backPrefix"`
	BackSuffix  string `json:"backSuffix"`
	UseRegex    bool   `json:"useRegex"`
	FrontRegex  string `json:"frontRegex"`
	BackRegex   string `json:"backRegex"`
}

// DefaultOptions returns options matching "Question: ...\nAnswer: ..." blocks
// in raw-regex mode.
func DefaultOptions() Options {
	return Options{
		FrontPrefix: DefaultFrontPrefix,
		BackPrefix:  DefaultBackPrefix,
		UseRegex:    true,
		FrontRegex:  DefaultFrontRegex,
		BackRegex:   DefaultBackRegex,
	}
}

// LiteralPattern builds the pattern for one side from literal markers.
// The markers are escaped, so regex metacharacters in them match literally.
func LiteralPattern(prefix, suffix string) string {
	return regexp.QuoteMeta(prefix) + lineCapture + regexp.QuoteMeta(suffix)
}

// SetFrontPrefix updates the front prefix and re-derives the front pattern.
func (o *Options) SetFrontPrefix(v string) {
	o.FrontPrefix = v
	o.sync()
}

// SetFrontSuffix updates the front suffix and re-derives the front pattern.
func (o *Options) SetFrontSuffix(v string) {
	o.FrontSuffix = v
	o.sync()
}

// SetBackPrefix updates the back prefix and re-derives the back pattern.
func (o *Options) SetBackPrefix(v string) {
	o.BackPrefix = v
	o.sync()
}

// SetBackSuffix updates the back suffix and re-derives the back pattern.
func (o *Options) SetBackSuffix(v string) {
	o.BackSuffix = v
	o.sync()
}

// SetUseRegex switches between raw-regex and prefix/suffix mode. Leaving
// raw-regex mode replaces the patterns with ones derived from the markers.
func (o *Options) SetUseRegex(v bool) {
	o.UseRegex = v
	o.sync()
}

// SetFrontRegex sets a raw front pattern. It has no effect outside raw-regex mode.
func (o *Options) SetFrontRegex(v string) {
	if o.UseRegex {
		o.FrontRegex = v
	}
}

// SetBackRegex sets a raw back pattern. It has no effect outside raw-regex mode.
func (o *Options) SetBackRegex(v string) {
	if o.UseRegex {
		o.BackRegex = v
	}
}

// Normalized returns a copy whose patterns are consistent with its mode.
// Options decoded from a request are passed through this before use.
func (o Options) Normalized() Options {
	o.sync()
	return o
}

func (o *Options) sync() {
	if o.UseRegex {
		return
	}
	o.FrontRegex = LiteralPattern(o.FrontPrefix, o.FrontSuffix)
	o.BackRegex = LiteralPattern(o.BackPrefix, o.BackSuffix)
}
