// Package conversion defines the boundary to external services that turn
// binary documents (such as DOCX) into plain text for card parsing.
package conversion

import (
	"context"
)

// DocxContentType is the MIME type of Office Open XML word documents.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Converter extracts plain text from a binary document.
type Converter interface {
	// ConvertToText sends the document to the conversion service and returns
	// its plain text rendition.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - filename: The original file name, forwarded to the service
	//   - data: The raw document bytes
	//
	// Returns:
	//   - The extracted text, never empty on success
	//   - An *Error wrapping ErrConversionFailed on any failure. Calls are
	//     made exactly once and never retried.
	ConvertToText(ctx context.Context, filename string, data []byte) (string, error)
}
