package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure resolverService implements ResolverService
var _ driving.ResolverService = (*resolverService)(nil)

// resolverService implements the ResolverService interface. Listings are
// cached per collection id with the same bounded-freshness policy as the
// collection directory.
type resolverService struct {
	client    driven.CollectionAPI
	overrides *domain.AttributeOverrides
	cache     *cache.Cache
}

// NewResolverService creates a new ResolverService. overrides may be nil.
func NewResolverService(client driven.CollectionAPI, overrides *domain.AttributeOverrides, ttl time.Duration) driving.ResolverService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &resolverService{
		client:    client,
		overrides: overrides,
		cache:     cache.New(ttl, 2*ttl),
	}
}

// ListDocuments enumerates the attachments of a collection. A file id that
// no longer resolves is skipped individually; a missing attribute bag
// degrades to filename-only metadata.
func (s *resolverService) ListDocuments(ctx context.Context, collectionID string) ([]domain.DocumentRef, error) {
	key := "docs:" + collectionID
	if cached, found := s.cache.Get(key); found {
		return cached.([]domain.DocumentRef), nil
	}

	files, err := s.client.ListCollectionFiles(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(files))
	docs := make([]domain.DocumentRef, 0, len(files))
	for _, f := range files {
		if seen[f.FileID] {
			continue
		}
		seen[f.FileID] = true

		filename, err := s.client.RetrieveFilename(ctx, f.FileID)
		if err != nil {
			// Stale attachment; leave it out rather than failing the listing.
			continue
		}

		raw, err := s.client.RetrieveFileAttributes(ctx, collectionID, f.FileID)
		if err != nil {
			raw = nil
		}
		raw = s.overrides.Apply(filename, raw)

		docs = append(docs, domain.DocumentRef{
			FileID:     f.FileID,
			Filename:   filename,
			Attributes: domain.ParseFileAttributes(raw),
		})
	}

	// Deterministic, diff-stable ordering.
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].DisplayName() != docs[j].DisplayName() {
			return docs[i].DisplayName() < docs[j].DisplayName()
		}
		return docs[i].FileID < docs[j].FileID
	})

	s.cache.Set(key, docs, cache.DefaultExpiration)
	return docs, nil
}

// SummarizeFileTypes derives the set of file extensions present in the
// collection, upper-cased, de-duplicated and sorted.
func (s *resolverService) SummarizeFileTypes(ctx context.Context, collectionID string) (string, bool) {
	docs, err := s.ListDocuments(ctx, collectionID)
	if err != nil || len(docs) == 0 {
		return "", false
	}

	set := make(map[string]bool)
	for _, d := range docs {
		if ext, ok := d.Extension(); ok {
			set[ext] = true
		}
	}
	if len(set) == 0 {
		return "", false
	}

	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", "), true
}

// ResolveCitation resolves a cited file id to a display name and optional
// URL. Ids of files no longer attached to the collection fall back to a
// direct filename lookup without a URL.
func (s *resolverService) ResolveCitation(ctx context.Context, collectionID, fileID string) (domain.SourceRef, error) {
	if collectionID != "" {
		docs, err := s.ListDocuments(ctx, collectionID)
		if err == nil {
			for _, d := range docs {
				if d.FileID == fileID {
					ref := domain.SourceRef{Name: d.DisplayName()}
					if url, ok := d.Link(); ok {
						ref.URL = url
					}
					return ref, nil
				}
			}
		}
	}

	filename, err := s.client.RetrieveFilename(ctx, fileID)
	if err != nil {
		return domain.SourceRef{}, err
	}
	return domain.SourceRef{Name: filename}, nil
}
