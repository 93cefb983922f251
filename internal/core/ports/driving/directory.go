package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// DirectoryService lists the available document collections.
type DirectoryService interface {
	// List returns all collections visible to the configured credential.
	// It fails soft: on any retrieval error it returns an empty slice
	// together with the error so the caller can display it, and it caches
	// successful results for a short bounded interval.
	List(ctx context.Context) ([]domain.Collection, error)
}
