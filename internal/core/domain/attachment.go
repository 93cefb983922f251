package domain

import (
	"path"
	"strings"
)

// Classification is the ingestion-time audience tag of a document.
// It is carried through the data model but not enforced as an access-control
// check anywhere in the query path.
type Classification string

const (
	ClassificationPublic  Classification = "public"
	ClassificationStudent Classification = "student"
	ClassificationStaff   Classification = "staff"
	ClassificationAdmin   Classification = "admin"
)

// Attribute bag keys written by the ingestion pipeline. All of them are
// optional; consumers must degrade to filename-only display when absent.
const (
	AttrTitle          = "doc"
	AttrVersion        = "version"
	AttrClassification = "classification"
	AttrSource         = "source"
	AttrViewSourceURL  = "view_source_url"
	AttrSourceURL      = "source_url"
	AttrPath           = "path"
	AttrIngestedAt     = "ingested_at"
	AttrIngestedBy     = "ingested_by"
	AttrPipeline       = "pipeline"
)

// FileAttributes is the typed view of an attachment's attribute bag.
// Every field is independently optional; the zero value means "not set".
type FileAttributes struct {
	Title          string         `json:"title,omitempty"`
	Version        string         `json:"version,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	Source         string         `json:"source,omitempty"`
	ViewSourceURL  string         `json:"view_source_url,omitempty"`
	SourceURL      string         `json:"source_url,omitempty"`
	Path           string         `json:"path,omitempty"`
	IngestedAt     string         `json:"ingested_at,omitempty"`
	IngestedBy     string         `json:"ingested_by,omitempty"`
	Pipeline       string         `json:"pipeline,omitempty"`
}

// ParseFileAttributes builds a FileAttributes from a raw attribute bag.
// Missing keys and non-string values are tolerated and simply left unset.
func ParseFileAttributes(raw map[string]any) FileAttributes {
	return FileAttributes{
		Title:          stringAttr(raw, AttrTitle),
		Version:        stringAttr(raw, AttrVersion),
		Classification: Classification(stringAttr(raw, AttrClassification)),
		Source:         stringAttr(raw, AttrSource),
		ViewSourceURL:  stringAttr(raw, AttrViewSourceURL),
		SourceURL:      stringAttr(raw, AttrSourceURL),
		Path:           stringAttr(raw, AttrPath),
		IngestedAt:     stringAttr(raw, AttrIngestedAt),
		IngestedBy:     stringAttr(raw, AttrIngestedBy),
		Pipeline:       stringAttr(raw, AttrPipeline),
	}
}

func stringAttr(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// DocumentRef is one attached document of a collection together with its
// resolved metadata.
type DocumentRef struct {
	FileID     string         `json:"file_id"`
	Filename   string         `json:"filename"`
	Attributes FileAttributes `json:"attributes"`
}

// DisplayName prefers the ingestion-time document title over the raw filename.
func (d DocumentRef) DisplayName() string {
	if d.Attributes.Title != "" {
		return d.Attributes.Title
	}
	return d.Filename
}

// Link returns the shareable URL of the document, preferring the viewable
// source URL over the canonical one. ok is false when neither is set.
func (d DocumentRef) Link() (url string, ok bool) {
	if d.Attributes.ViewSourceURL != "" {
		return d.Attributes.ViewSourceURL, true
	}
	if d.Attributes.SourceURL != "" {
		return d.Attributes.SourceURL, true
	}
	return "", false
}

// Extension returns the upper-cased file extension without the leading dot,
// derived from the path attribute when present, else from the filename.
// ok is false when no extension can be resolved.
func (d DocumentRef) Extension() (ext string, ok bool) {
	name := d.Filename
	if d.Attributes.Path != "" {
		name = d.Attributes.Path
	}
	e := strings.TrimPrefix(path.Ext(name), ".")
	if e == "" {
		return "", false
	}
	return strings.ToUpper(e), true
}

// SourceRef is a resolved citation target: a display name plus an optional
// shareable URL.
type SourceRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}
