// Package export renders card sets as human readable text files and reads
// such files back, so an exported set can be restored or re-imported.
//
// The format is:
//
//	Card Set: <name>
//	Created: <timestamp>
//	Last Modified: <timestamp>
//
//	Cards:
//
//	Card 1:
//	Question: <front>
//	Answer: <back>
package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
)

// Line markers used by the format.
const (
	setNamePrefix      = "Card Set: "
	createdPrefix      = "Created: "
	lastModifiedPrefix = "Last Modified: "
	cardsHeader        = "Cards:"
	questionPrefix     = "Question: "
	answerPrefix       = "Answer: "

	// TimestampLayout is used for the Created and Last Modified lines.
	TimestampLayout = "2006-01-02 15:04:05 MST"

	// ContentType is the MIME type of an export file.
	ContentType = "text/plain; charset=utf-8"
)

var (
	cardHeaderRegex = regexp.MustCompile(`^Card \d+:\s*$`)
	unsafeNameRegex = regexp.MustCompile(`[^a-z0-9]`)
)

// Write renders set to w. Timestamps are shown in loc; a nil loc means UTC.
func Write(w io.Writer, set *domain.CardSet, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	bw := bufio.NewWriter(w)
	lines := []string{
		setNamePrefix + set.Name,
		createdPrefix + set.CreatedAt.In(loc).Format(TimestampLayout),
		lastModifiedPrefix + set.LastModified.In(loc).Format(TimestampLayout),
		"",
		cardsHeader,
	}
	for i, c := range set.Cards {
		lines = append(lines,
			"",
			fmt.Sprintf("Card %d:", i+1),
			questionPrefix+c.Front,
			answerPrefix+c.Back,
		)
	}

	if _, err := bw.WriteString(strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// String renders set as a string in UTC.
func String(set *domain.CardSet) string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = Write(&sb, set, time.UTC)
	return sb.String()
}

// FileName derives the export file name: the set name lower-cased with every
// character outside a-z and 0-9 replaced by "_", followed by the Unix
// millisecond timestamp.
func FileName(name string, now time.Time) string {
	safe := unsafeNameRegex.ReplaceAllString(strings.ToLower(name), "_")
	return fmt.Sprintf("%s_%d.txt", safe, now.UnixMilli())
}

// Document is the content recovered from an export file.
type Document struct {
	Name  string
	Cards []domain.CardDraft
}

// readState tracks where the reader is within a card block.
type readState int

const (
	stateHeader readState = iota
	stateExpectQuestion
	stateExpectAnswer
	stateBetweenCards
)

// Read parses an export file. Blank lines are ignored. A "Card N:" line must
// be followed by a Question line and then an Answer line; blocks that do not
// follow that shape are skipped. The set name is optional.
func Read(r io.Reader) (*Document, error) {
	doc := &Document{Cards: []domain.CardDraft{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	state := stateHeader
	var pending domain.CardDraft

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if cardHeaderRegex.MatchString(trimmed) {
			state = stateExpectQuestion
			pending = domain.CardDraft{}
			continue
		}

		switch state {
		case stateHeader:
			if name, ok := strings.CutPrefix(trimmed, setNamePrefix); ok && doc.Name == "" {
				doc.Name = strings.TrimSpace(name)
			}
		case stateExpectQuestion:
			q, ok := strings.CutPrefix(trimmed, strings.TrimSpace(questionPrefix))
			if !ok {
				state = stateBetweenCards
				continue
			}
			pending.Front = q
			state = stateExpectAnswer
		case stateExpectAnswer:
			a, ok := strings.CutPrefix(trimmed, strings.TrimSpace(answerPrefix))
			if !ok {
				state = stateBetweenCards
				continue
			}
			pending.Back = a
			if d := pending.Normalize(); d.Front != "" && d.Back != "" {
				doc.Cards = append(doc.Cards, d)
			}
			state = stateBetweenCards
		case stateBetweenCards:
			// Anything outside a card block is ignored.
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	return doc, nil
}
