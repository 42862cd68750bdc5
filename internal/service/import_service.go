package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/export"
	"github.com/phrazzld/memorygame/internal/parser"
	"github.com/phrazzld/memorygame/internal/platform/logger"
)

// Format is an import file format.
type Format string

// Supported import formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDocx Format = "docx"
)

// ImportFile is an uploaded file awaiting import.
type ImportFile struct {
	// Name is the original file name; its extension helps detect the format.
	Name string
	// ContentType is the declared media type, if any.
	ContentType string
	// Data is the raw file content.
	Data []byte
}

// DefaultRestoredSetName names a restored set whose export file has no name line.
const DefaultRestoredSetName = "Restored set"

// ImportService turns uploaded files into cards.
type ImportService interface {
	// ParseText runs the card parser over pasted text.
	//
	// Returns:
	//   - (drafts, nil): at least one front/back pair was found
	//   - (nil, *parser.ParseError): the patterns are invalid or no pair was found
	ParseText(ctx context.Context, content string, opts parser.Options) ([]domain.CardDraft, error)

	// Preview extracts the front/back pairs of file without adding them anywhere.
	//
	// Returns:
	//   - (drafts, nil): at least one pair was found
	//   - (nil, ErrUnsupportedFormat): the format is not text, JSON or DOCX,
	//     or DOCX conversion is not configured
	//   - (nil, *conversion.Error): the remote conversion failed
	//   - (nil, *parser.ParseError): invalid patterns, malformed JSON or zero pairs
	Preview(ctx context.Context, file ImportFile, opts parser.Options) ([]domain.CardDraft, error)

	// Import extracts the pairs of file and adds them to the set as one batch.
	// If any pair is empty or over the length limit nothing is added.
	Import(ctx context.Context, setID string, file ImportFile, opts parser.Options) ([]domain.Card, error)

	// Restore reads an export file and creates a new set from it.
	Restore(ctx context.Context, file ImportFile) (*domain.CardSet, error)
}

// Verify interface compliance at compile time
var _ ImportService = (*importServiceImpl)(nil)

type importServiceImpl struct {
	cardSets  CardSetService
	converter conversion.Converter
	logger    *slog.Logger
}

// NewImportService creates a new ImportService. converter may be nil, in
// which case DOCX files are reported as unsupported.
func NewImportService(
	cardSets CardSetService,
	converter conversion.Converter,
	logger *slog.Logger,
) (ImportService, error) {
	if cardSets == nil {
		return nil, domain.NewValidationError("cardSets", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &importServiceImpl{
		cardSets:  cardSets,
		converter: converter,
		logger:    logger.With(slog.String("component", "import_service")),
	}, nil
}

// ParseText implements ImportService.ParseText.
func (s *importServiceImpl) ParseText(ctx context.Context, content string, opts parser.Options) ([]domain.CardDraft, error) {
	p, err := parser.Compile(opts)
	if err != nil {
		return nil, err
	}

	drafts := p.Parse(strings.TrimSpace(content))
	if len(drafts) == 0 {
		return nil, parser.NewParseError("content", "no front/back pairs matched the patterns", parser.ErrNoCards)
	}
	return drafts, nil
}

// Preview implements ImportService.Preview.
func (s *importServiceImpl) Preview(ctx context.Context, file ImportFile, opts parser.Options) ([]domain.CardDraft, error) {
	return s.extract(ctx, file, opts)
}

// Import implements ImportService.Import.
func (s *importServiceImpl) Import(
	ctx context.Context,
	setID string,
	file ImportFile,
	opts parser.Options,
) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Fail fast before a potentially slow conversion.
	if _, err := s.cardSets.Get(ctx, setID); err != nil {
		return nil, err
	}

	drafts, err := s.extract(ctx, file, opts)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardSets.AddCards(ctx, setID, drafts)
	if err != nil {
		return nil, err
	}

	log.Info("file imported",
		slog.String("set_id", setID),
		slog.String("filename", file.Name),
		slog.Int("card_count", len(cards)))
	return cards, nil
}

// Restore implements ImportService.Restore.
func (s *importServiceImpl) Restore(ctx context.Context, file ImportFile) (*domain.CardSet, error) {
	doc, err := export.Read(bytes.NewReader(file.Data))
	if err != nil {
		return nil, parser.NewParseError("file", "could not read export file", fmt.Errorf("%w: %v", parser.ErrParse, err))
	}
	if len(doc.Cards) == 0 {
		return nil, parser.NewParseError("file", "export file contains no cards", parser.ErrNoCards)
	}

	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file.Name), filepath.Ext(file.Name))
	}
	if strings.TrimSpace(name) == "" || name == "." {
		name = DefaultRestoredSetName
	}

	return s.cardSets.RestoreCardSet(ctx, name, doc.Cards)
}

// extract resolves the file format and returns the pairs it contains.
func (s *importServiceImpl) extract(ctx context.Context, file ImportFile, opts parser.Options) ([]domain.CardDraft, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	format, err := DetectFormat(file)
	if err != nil {
		log.Warn("unsupported import file",
			slog.String("filename", file.Name),
			slog.String("content_type", file.ContentType))
		return nil, err
	}

	log.Debug("extracting cards",
		slog.String("filename", file.Name),
		slog.String("format", string(format)),
		slog.Int("size_bytes", len(file.Data)))

	var drafts []domain.CardDraft
	switch format {
	case FormatJSON:
		drafts, err = parser.DecodeJSONCards(file.Data)
		if err != nil {
			return nil, err
		}
	case FormatDocx:
		if s.converter == nil {
			return nil, NewServiceError("import", "document conversion is not configured", ErrUnsupportedFormat)
		}
		text, err := s.converter.ConvertToText(ctx, file.Name, file.Data)
		if err != nil {
			return nil, err
		}
		drafts, err = parseText(text, opts)
		if err != nil {
			return nil, err
		}
	default:
		drafts, err = parseText(string(file.Data), opts)
		if err != nil {
			return nil, err
		}
	}

	if len(drafts) == 0 {
		return nil, parser.NewParseError("file", "no cards found in file", parser.ErrNoCards)
	}
	return drafts, nil
}

// parseText runs the card parser over text. When the patterns match
// nothing, the text is tried as an export file so exported sets can be
// imported into another set.
func parseText(text string, opts parser.Options) ([]domain.CardDraft, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, parser.NewParseError("file", "file is empty", parser.ErrNoCards)
	}

	drafts, err := parser.Parse(content, opts)
	if err != nil {
		return nil, err
	}
	if len(drafts) > 0 {
		return drafts, nil
	}

	doc, err := export.Read(strings.NewReader(content))
	if err != nil {
		return nil, parser.NewParseError("file", "file could not be read as an export", err)
	}
	// Text that is not an export yields no cards; the caller reports ErrNoCards.
	return doc.Cards, nil
}

// DetectFormat resolves the format of file from its declared content type,
// then its extension, then by sniffing its content.
func DetectFormat(file ImportFile) (Format, error) {
	if f, ok := formatFromContentType(file.ContentType); ok {
		return f, nil
	}
	if f, ok := formatFromExtension(file.Name); ok {
		return f, nil
	}

	detected := mimetype.Detect(file.Data)
	switch {
	case detected.Is(conversion.DocxContentType):
		return FormatDocx, nil
	case detected.Is("application/json"):
		return FormatJSON, nil
	case detected.Is("text/plain"):
		return FormatText, nil
	}

	return "", NewServiceError(
		"detect_format",
		fmt.Sprintf("%s files cannot be imported", detected.String()),
		ErrUnsupportedFormat,
	)
}

func formatFromContentType(contentType string) (Format, bool) {
	if contentType == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}

	switch mediaType {
	case "text/plain":
		return FormatText, true
	case "application/json":
		return FormatJSON, true
	case conversion.DocxContentType:
		return FormatDocx, true
	}
	return "", false
}

func formatFromExtension(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".md":
		return FormatText, true
	case ".json":
		return FormatJSON, true
	case ".docx":
		return FormatDocx, true
	}
	return "", false
}

