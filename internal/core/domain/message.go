package domain

// Annotation is a citation marker inside generated text pointing at a source
// file. The remote service attaches it either as a direct file citation or as
// a file-path reference.
type Annotation struct {
	FileCitationID string `json:"file_citation_id,omitempty"`
	FilePathID     string `json:"file_path_id,omitempty"`
}

// FileID extracts the referenced file id, preferring the direct file
// citation and falling back to the file-path reference. Empty when the
// annotation carries neither.
func (a Annotation) FileID() string {
	if a.FileCitationID != "" {
		return a.FileCitationID
	}
	return a.FilePathID
}

// TextBlock is one text-typed content block of an assistant message with its
// ordered citation annotations. Non-text blocks are dropped at the adapter
// boundary.
type TextBlock struct {
	Value       string       `json:"value"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// ThreadMessage is one message of a remote thread as observed through the
// message-listing operation.
type ThreadMessage struct {
	Role TurnRole    `json:"role"`
	Text []TextBlock `json:"text"`
}
