package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// ResolverService enumerates the documents of a collection and resolves
// per-document metadata. Individual resolution failures are skipped, never
// fatal for the listing as a whole.
type ResolverService interface {
	// ListDocuments returns the attached documents of a collection with
	// their resolved attributes, deduplicated and sorted by display name.
	ListDocuments(ctx context.Context, collectionID string) ([]domain.DocumentRef, error)

	// SummarizeFileTypes returns a human-readable, sorted, de-duplicated,
	// upper-cased list of file extensions present in the collection.
	// ok is false when the collection has no files or no resolvable
	// extensions.
	SummarizeFileTypes(ctx context.Context, collectionID string) (summary string, ok bool)

	// ResolveCitation resolves a cited file id to a display name and
	// optional URL, preferring the ingestion-time title and viewable URL.
	ResolveCitation(ctx context.Context, collectionID, fileID string) (domain.SourceRef, error)
}
