// Package service contains the application use cases of the memory game.
// It orchestrates domain objects, the card set repository (defined in
// internal/store), the card parser and the document converter.
//
// Key components:
//
// 1. CardSetService:
//   - Owns the single card set collection and the active set selection
//   - Applies each command to a copy, persists the whole collection, then commits
//
// 2. ImportService:
//   - Resolves the format of an uploaded file (text, JSON, DOCX, export file)
//   - Parses it into card drafts and admits them as one all-or-nothing batch
//
// 3. GameService:
//   - Hosts in-memory adaptive game sessions keyed by id
//   - Offers the final score of a finished session as the set's best score
//
// Services receive dependencies through constructor injection and never depend
// on a specific storage or transport implementation.
package service
