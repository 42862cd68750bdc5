// Package parser extracts front/back card pairs from imported text using
// either literal prefix/suffix markers or caller-supplied regular expressions,
// and decodes the JSON card import format.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/memorygame/internal/domain"
)

// Parser holds compiled front and back patterns. It is safe for concurrent use.
type Parser struct {
	front *regexp.Regexp
	back  *regexp.Regexp
}

// Compile validates opts and compiles its patterns. Options are normalized
// first, so prefix/suffix mode always uses the derived patterns.
func Compile(opts Options) (*Parser, error) {
	opts = opts.Normalized()

	front, err := compilePattern("frontRegex", opts.FrontRegex)
	if err != nil {
		return nil, err
	}

	back, err := compilePattern("backRegex", opts.BackRegex)
	if err != nil {
		return nil, err
	}

	return &Parser{front: front, back: back}, nil
}

func compilePattern(field, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, NewParseError(field, "pattern does not compile", fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}
	if re.NumSubexp() < 1 {
		return nil, NewParseError(field, "pattern must contain a capture group", ErrNoCaptureGroup)
	}
	return re, nil
}

// Parse extracts pairs from content.
//
// Every match of the front pattern contributes its first capture group, in
// order; the back pattern is applied independently the same way. The i-th
// front is paired with the i-th back up to the shorter of the two lists, and
// the remainder of the longer list is dropped. Both sides are trimmed, and
// pairs with an empty side are discarded. The result is never nil.
func (p *Parser) Parse(content string) []domain.CardDraft {
	fronts := firstGroups(p.front, content)
	backs := firstGroups(p.back, content)

	n := min(len(fronts), len(backs))
	pairs := make([]domain.CardDraft, 0, n)
	for i := 0; i < n; i++ {
		d := domain.CardDraft{Front: fronts[i], Back: backs[i]}.Normalize()
		if d.Front == "" || d.Back == "" {
			continue
		}
		pairs = append(pairs, d)
	}

	return pairs
}

func firstGroups(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	groups := make([]string, 0, len(matches))
	for _, m := range matches {
		groups = append(groups, m[1])
	}
	return groups
}

// Parse compiles opts and parses content in one step.
func Parse(content string, opts Options) ([]domain.CardDraft, error) {
	p, err := Compile(opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(content), nil
}

// jsonCards is the JSON import document: {"cards":[{"front":"...","back":"..."}]}.
type jsonCards struct {
	Cards []domain.CardDraft `json:"cards"`
}

// DecodeJSONCards decodes the JSON import format. Entries are trimmed and
// those with an empty side are discarded. A document that is not valid JSON
// or has no "cards" array is a ParseError.
func DecodeJSONCards(data []byte) ([]domain.CardDraft, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewParseError("json", "document is not a JSON object", fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}
	if _, ok := raw["cards"]; !ok {
		return nil, NewParseError("json", `document has no "cards" array`, ErrInvalidJSON)
	}

	var doc jsonCards
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewParseError("json", `"cards" must be an array of {front, back}`, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}

	pairs := make([]domain.CardDraft, 0, len(doc.Cards))
	for _, c := range doc.Cards {
		d := c.Normalize()
		if d.Front == "" || d.Back == "" {
			continue
		}
		pairs = append(pairs, d)
	}
	return pairs, nil
}

// IsBlank reports whether content has nothing but whitespace.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
