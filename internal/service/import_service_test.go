package service

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/export"
	"github.com/phrazzld/memorygame/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConverter returns a canned result and records its calls.
type stubConverter struct {
	text  string
	err   error
	calls int
}

func (c *stubConverter) ConvertToText(ctx context.Context, filename string, data []byte) (string, error) {
	c.calls++
	return c.text, c.err
}

func newTestImportService(t *testing.T, converter conversion.Converter) (ImportService, CardSetService, *domain.CardSet) {
	t.Helper()

	cardSets := newTestCardSetService(t, &memoryRepo{})
	set, err := cardSets.CreateCardSet(context.Background(), "Imports")
	require.NoError(t, err)

	svc, err := NewImportService(cardSets, converter, testLogger())
	require.NoError(t, err)
	return svc, cardSets, set
}

func TestNewImportService(t *testing.T) {
	t.Parallel()

	_, err := NewImportService(nil, nil, testLogger())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    ImportFile
		want    Format
		wantErr bool
	}{
		{
			name: "declared text",
			file: ImportFile{Name: "cards", ContentType: "text/plain; charset=utf-8", Data: []byte("x")},
			want: FormatText,
		},
		{
			name: "declared json",
			file: ImportFile{Name: "cards.bin", ContentType: "application/json", Data: []byte("{}")},
			want: FormatJSON,
		},
		{
			name: "declared docx",
			file: ImportFile{Name: "cards", ContentType: conversion.DocxContentType, Data: []byte("PK")},
			want: FormatDocx,
		},
		{
			name: "extension wins over octet-stream",
			file: ImportFile{Name: "Deck.DOCX", ContentType: "application/octet-stream", Data: []byte("PK")},
			want: FormatDocx,
		},
		{
			name: "json extension",
			file: ImportFile{Name: "deck.json", Data: []byte(`{"cards":[]}`)},
			want: FormatJSON,
		},
		{
			name: "sniffed json",
			file: ImportFile{Name: "upload", Data: []byte(`{"cards":[{"front":"a","back":"b"}]}`)},
			want: FormatJSON,
		},
		{
			name: "sniffed text",
			file: ImportFile{Name: "upload", Data: []byte("Question: a\nAnswer: b\n")},
			want: FormatText,
		},
		{
			name:    "pdf is unsupported",
			file:    ImportFile{Name: "upload", Data: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")},
			wantErr: true,
		},
		{
			name:    "declared pdf without extension",
			file:    ImportFile{Name: "deck.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DetectFormat(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportService_ParseText(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestImportService(t, nil)
	ctx := context.Background()

	pairs, err := svc.ParseText(ctx, "Question: 2+2\nAnswer: 4\nQuestion: Sky\nAnswer: Blue", parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, drafts("2+2", "4", "Sky", "Blue"), pairs)

	_, err = svc.ParseText(ctx, "nothing here", parser.DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrNoCards)

	bad := parser.DefaultOptions()
	bad.FrontRegex = "("
	_, err = svc.ParseText(ctx, "x", bad)
	assert.ErrorIs(t, err, parser.ErrParse)
}

func TestImportService_ImportText(t *testing.T) {
	t.Parallel()

	svc, cardSets, set := newTestImportService(t, nil)
	ctx := context.Background()

	cards, err := svc.Import(ctx, set.ID, ImportFile{
		Name: "deck.txt",
		Data: []byte("  Question: Capital of France\nAnswer: Paris\nQuestion: Capital of Spain\nAnswer: Madrid\n  "),
	}, parser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, cards, 2)

	got, err := cardSets.Get(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "Madrid", got.Cards[1].Back)
}

func TestImportService_ImportPrefixSuffixMode(t *testing.T) {
	t.Parallel()

	svc, _, set := newTestImportService(t, nil)

	opts := parser.DefaultOptions()
	opts.SetUseRegex(false)
	opts.SetFrontPrefix("Q(")
	opts.SetFrontSuffix(")")
	opts.SetBackPrefix("A: ")

	cards, err := svc.Import(context.Background(), set.ID, ImportFile{
		Name: "deck.txt",
		Data: []byte("Q(what?)\nA: that"),
	}, opts)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "what?", cards[0].Front)
	assert.Equal(t, "that", cards[0].Back)
}

func TestImportService_ImportJSON(t *testing.T) {
	t.Parallel()

	svc, _, set := newTestImportService(t, nil)
	ctx := context.Background()

	cards, err := svc.Import(ctx, set.ID, ImportFile{
		Name: "deck.json",
		Data: []byte(`{"cards":[{"front":" a ","back":"b"},{"front":"","back":"dropped"}]}`),
	}, parser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].Front)

	_, err = svc.Import(ctx, set.ID, ImportFile{Name: "deck.json", Data: []byte(`{"cards":`)}, parser.DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrInvalidJSON)

	_, err = svc.Import(ctx, set.ID, ImportFile{Name: "deck.json", Data: []byte(`{"cards":[]}`)}, parser.DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrNoCards)
}

func TestImportService_ImportRejectsOverLengthBatch(t *testing.T) {
	t.Parallel()

	svc, cardSets, set := newTestImportService(t, nil)
	ctx := context.Background()

	content := "Question: short\nAnswer: ok\n" +
		"Question: " + strings.Repeat("x", 81) + "\nAnswer: long\n" +
		"Question: fine\nAnswer: yes\n"

	_, err := svc.Import(ctx, set.ID, ImportFile{Name: "deck.txt", Data: []byte(content)}, parser.DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := cardSets.Get(ctx, set.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cards)
}

func TestImportService_ImportDocx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	file := ImportFile{Name: "deck.docx", Data: []byte("PK\x03\x04")}

	t.Run("converted", func(t *testing.T) {
		t.Parallel()

		conv := &stubConverter{text: "Question: from docx\nAnswer: yes"}
		svc, _, set := newTestImportService(t, conv)

		cards, err := svc.Import(ctx, set.ID, file, parser.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "from docx", cards[0].Front)
		assert.Equal(t, 1, conv.calls)
	})

	t.Run("conversion failure", func(t *testing.T) {
		t.Parallel()

		conv := &stubConverter{err: conversion.NewError("deck.docx", 500, "boom", conversion.ErrUnexpectedStatus)}
		svc, _, set := newTestImportService(t, conv)

		_, err := svc.Import(ctx, set.ID, file, parser.DefaultOptions())
		assert.ErrorIs(t, err, conversion.ErrConversionFailed)
		assert.Equal(t, 1, conv.calls, "conversion is never retried")
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		svc, _, set := newTestImportService(t, nil)

		_, err := svc.Import(ctx, set.ID, file, parser.DefaultOptions())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestImportService_ImportUnknownSetSkipsConversion(t *testing.T) {
	t.Parallel()

	conv := &stubConverter{text: "Question: a\nAnswer: b"}
	svc, _, _ := newTestImportService(t, conv)

	_, err := svc.Import(context.Background(), "missing", ImportFile{Name: "deck.docx", Data: []byte("PK")}, parser.DefaultOptions())
	assert.ErrorIs(t, err, ErrCardSetNotFound)
	assert.Zero(t, conv.calls)
}

func TestImportService_PreviewDoesNotAdd(t *testing.T) {
	t.Parallel()

	svc, cardSets, set := newTestImportService(t, nil)
	ctx := context.Background()

	pairs, err := svc.Preview(ctx, ImportFile{Name: "deck.txt", Data: []byte("Question: a\nAnswer: b")}, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, drafts("a", "b"), pairs)

	got, err := cardSets.Get(ctx, set.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cards)

	_, err = svc.Preview(ctx, ImportFile{Name: "empty.txt", Data: []byte("   \n")}, parser.DefaultOptions())
	assert.ErrorIs(t, err, parser.ErrNoCards)
}

func TestImportService_ExportFileFallback(t *testing.T) {
	t.Parallel()

	svc, _, set := newTestImportService(t, nil)

	source := &domain.CardSet{
		Name:         "Exported",
		Cards:        []domain.Card{{Front: "front one", Back: "back one"}},
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastModified: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	opts := parser.DefaultOptions()
	opts.SetUseRegex(false)
	opts.SetFrontPrefix("Q: ")
	opts.SetBackPrefix("A: ")

	cards, err := svc.Import(context.Background(), set.ID, ImportFile{
		Name: "exported.txt",
		Data: []byte(export.String(source)),
	}, opts)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "back one", cards[0].Back)
}

func TestImportService_Restore(t *testing.T) {
	t.Parallel()

	svc, cardSets, _ := newTestImportService(t, nil)
	ctx := context.Background()

	source := &domain.CardSet{
		Name: "Spanish verbs",
		Cards: []domain.Card{
			{Front: "hablar", Back: "to speak"},
			{Front: "comer", Back: "to eat"},
		},
	}

	restored, err := svc.Restore(ctx, ImportFile{Name: "spanish.txt", Data: []byte(export.String(source))})
	require.NoError(t, err)
	assert.Equal(t, "Spanish verbs", restored.Name)
	require.Len(t, restored.Cards, 2)
	assert.Equal(t, "comer", restored.Cards[1].Front)
	assert.Len(t, cardSets.List(ctx), 2)

	named, err := svc.Restore(ctx, ImportFile{
		Name: "backup_1700000000000.txt",
		Data: []byte("Card 1:\nQuestion: a\nAnswer: b\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "backup_1700000000000", named.Name)

	_, err = svc.Restore(ctx, ImportFile{Name: "x.txt", Data: []byte("not an export")})
	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestParseText_ExportFallback(t *testing.T) {
	t.Parallel()

	drafts, err := parseText("just some notes", parser.DefaultOptions())
	require.NoError(t, err, "text that is not an export is not an error here")
	assert.Empty(t, drafts)

	// A single line longer than the export reader accepts.
	_, err = parseText(strings.Repeat("x", 2<<20), parser.DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.ErrorIs(t, err, parser.ErrParse)
	assert.NotErrorIs(t, err, parser.ErrNoCards)
}
