package driving

import "context"

// ComposerService turns a completed run into the final display text:
// answer body, resolved source citations, and (on link intent) the full
// document-links block.
type ComposerService interface {
	// Compose reads the newest assistant message of the thread, resolves
	// its citation annotations against the collection's attachments, and
	// returns the assembled text. The returned text is both displayed and
	// stored as the assistant turn.
	Compose(ctx context.Context, threadID, collectionID, userText string) (string, error)
}
