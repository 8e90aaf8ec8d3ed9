package addmedia

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bagger/internal/services/drupal"
)

// SourceKind identifies which media field carries a record's file.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceImage
	SourceDocument
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceImage:
		return "field_media_image"
	case SourceDocument:
		return "field_media_document"
	case SourceFile:
		return "field_media_file"
	default:
		return "unknown"
	}
}

var labelCaser = cases.Title(language.Und)

// Label returns a short display name such as "Image" or "Document".
func (k SourceKind) Label() string {
	return labelCaser.String(strings.TrimPrefix(k.String(), "field_media_"))
}

// Source is the classified media source of one record.
type Source struct {
	Kind    SourceKind
	Entries []drupal.FileReference
}

// Classify picks the first non-empty source field in image, document, file
// order.
func Classify(record drupal.MediaRecord) Source {
	switch {
	case len(record.Image) > 0:
		return Source{Kind: SourceImage, Entries: record.Image}
	case len(record.Document) > 0:
		return Source{Kind: SourceDocument, Entries: record.Document}
	case len(record.File) > 0:
		return Source{Kind: SourceFile, Entries: record.File}
	default:
		return Source{Kind: SourceUnknown}
	}
}

// first returns the first entry of the classified field.
func (s Source) first() (drupal.FileReference, bool) {
	if s.Kind == SourceUnknown || len(s.Entries) == 0 {
		return drupal.FileReference{}, false
	}
	return s.Entries[0], true
}

// directURL returns a URL usable without a file entity lookup. The image
// field wins whenever its first entry carries a URL.
func directURL(record drupal.MediaRecord, src Source) string {
	if len(record.Image) > 0 && record.Image[0].URL != "" {
		return record.Image[0].URL
	}
	if entry, ok := src.first(); ok && entry.URL != "" {
		return entry.URL
	}
	return ""
}
