package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure directoryService implements DirectoryService
var _ driving.DirectoryService = (*directoryService)(nil)

// DefaultCacheTTL bounds how stale collection and attachment listings may
// get before the remote service is asked again.
const DefaultCacheTTL = 60 * time.Second

const collectionsCacheKey = "collections"

// directoryService implements the DirectoryService interface as a
// read-through cache over the remote collection listing.
type directoryService struct {
	client driven.CollectionAPI
	cache  *cache.Cache
}

// NewDirectoryService creates a new DirectoryService with the given cache
// TTL. A non-positive ttl falls back to DefaultCacheTTL.
func NewDirectoryService(client driven.CollectionAPI, ttl time.Duration) driving.DirectoryService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &directoryService{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// List returns all available collections. Failures never propagate past
// this boundary as anything but an error value next to an empty slice.
func (s *directoryService) List(ctx context.Context) ([]domain.Collection, error) {
	if cached, found := s.cache.Get(collectionsCacheKey); found {
		return cached.([]domain.Collection), nil
	}

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return []domain.Collection{}, err
	}
	if collections == nil {
		collections = []domain.Collection{}
	}

	s.cache.Set(collectionsCacheKey, collections, cache.DefaultExpiration)
	return collections, nil
}
