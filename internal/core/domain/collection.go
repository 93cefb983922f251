package domain

// Collection is a named group of ingested documents searchable by the remote
// retrieval service. Collections are created and destroyed externally; this
// system only observes them.
type Collection struct {
	// ID is the remote identifier of the collection (vector store id)
	ID string `json:"id"`

	// Name is the human-readable collection name
	Name string `json:"name"`

	// Status is the remote ingestion status (e.g. "completed", "in_progress", "expired")
	Status string `json:"status"`

	// FileCount is the total number of files attached to the collection
	FileCount int `json:"file_count"`
}
