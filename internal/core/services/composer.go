package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure composerService implements ComposerService
var _ driving.ComposerService = (*composerService)(nil)

// noResponseFallback is shown when a completed run produced no text.
const noResponseFallback = "I couldn't generate a response. Please try again."

// linkTriggers is the fixed trigger-word set of the link-intent heuristic.
// Matching is case-insensitive containment, which is known to over-match
// (e.g. "source code"); the behaviour is kept as-is deliberately.
var linkTriggers = []string{
	"link",
	"links",
	"url",
	"urls",
	"source",
	"sources",
	"view source",
	"download",
	"where can i find",
	"where can i get",
}

// composerService implements the ComposerService interface.
type composerService struct {
	client   driven.AssistantAPI
	resolver driving.ResolverService
}

// NewComposerService creates a new ComposerService.
func NewComposerService(client driven.AssistantAPI, resolver driving.ResolverService) driving.ComposerService {
	return &composerService{client: client, resolver: resolver}
}

// Compose assembles the final display text from the thread's newest
// assistant message: answer body, resolved Sources block, and, on link
// intent, the full Document-links block.
func (s *composerService) Compose(ctx context.Context, threadID, collectionID, userText string) (string, error) {
	messages, err := s.client.ListMessages(ctx, threadID)
	if err != nil {
		return "", err
	}

	// Messages arrive newest first; the first assistant entry is the reply.
	var reply *domain.ThreadMessage
	for i := range messages {
		if messages[i].Role == domain.TurnAssistant {
			reply = &messages[i]
			break
		}
	}
	if reply == nil {
		return noResponseFallback, nil
	}

	var body strings.Builder
	citedIDs := make([]string, 0, 4)
	seenIDs := make(map[string]bool)
	for _, block := range reply.Text {
		body.WriteString(block.Value)
		for _, ann := range block.Annotations {
			if id := ann.FileID(); id != "" && !seenIDs[id] {
				seenIDs[id] = true
				citedIDs = append(citedIDs, id)
			}
		}
	}
	if body.Len() == 0 {
		return noResponseFallback, nil
	}

	text := body.String()
	if sources := s.resolveSources(ctx, collectionID, citedIDs); len(sources) > 0 {
		text += formatSourceBlock("**Sources:**", sources, true)
	}

	if collectionID != "" && isLinkRequest(userText) {
		if links := s.collectionLinks(ctx, collectionID); len(links) > 0 {
			text += formatSourceBlock("**Document links:**", links, false)
		}
	}

	return text, nil
}

// resolveSources maps cited file ids to display names and optional URLs.
// Ids that cannot be resolved are skipped without affecting the rest.
func (s *composerService) resolveSources(ctx context.Context, collectionID string, fileIDs []string) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(fileIDs))
	for _, id := range fileIDs {
		ref, err := s.resolver.ResolveCitation(ctx, collectionID, id)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return dedupeSorted(refs)
}

// collectionLinks returns every attached document with a resolvable
// (name, url) pair, not just the cited ones.
func (s *composerService) collectionLinks(ctx context.Context, collectionID string) []domain.SourceRef {
	docs, err := s.resolver.ListDocuments(ctx, collectionID)
	if err != nil {
		return nil
	}
	refs := make([]domain.SourceRef, 0, len(docs))
	for _, d := range docs {
		url, ok := d.Link()
		if !ok {
			continue
		}
		refs = append(refs, domain.SourceRef{Name: d.DisplayName(), URL: url})
	}
	return dedupeSorted(refs)
}

// dedupeSorted removes duplicate (name, url) pairs and orders the rest for
// diff-stable rendering.
func dedupeSorted(refs []domain.SourceRef) []domain.SourceRef {
	seen := make(map[domain.SourceRef]bool, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// formatSourceBlock renders a titled list of resolved references. Entries
// with a URL render as links; labelled controls whether the link text gets
// the "View source:" prefix used by the Sources block.
func formatSourceBlock(title string, refs []domain.SourceRef, labelled bool) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(title)
	for _, r := range refs {
		b.WriteString("\n")
		switch {
		case r.URL != "" && labelled:
			b.WriteString(fmt.Sprintf("- [View source: %s](%s)", r.Name, r.URL))
		case r.URL != "":
			b.WriteString(fmt.Sprintf("- [%s](%s)", r.Name, r.URL))
		default:
			b.WriteString(fmt.Sprintf("- %s", r.Name))
		}
	}
	return b.String()
}

// isLinkRequest reports whether the user text asks for document links or
// sources, by case-insensitive containment of any trigger word.
func isLinkRequest(userText string) bool {
	lowered := strings.ToLower(userText)
	for _, trigger := range linkTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}
