package drupal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EntityID is a Drupal entity identifier. Drupal serializes target IDs as
// numbers, but some REST configurations emit strings; both decode here.
type EntityID string

// UnmarshalJSON accepts JSON numbers, strings, and null.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = EntityID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = EntityID(n.String())
	return nil
}

// Empty reports whether the identifier is missing. "0" counts as missing,
// matching how Drupal marks an unset reference.
func (id EntityID) Empty() bool {
	return id == "" || id == "0"
}

func (id EntityID) String() string { return string(id) }

// TermReference points at a taxonomy term, e.g. a media use tag.
type TermReference struct {
	TargetID EntityID `json:"target_id"`
	URL      string   `json:"url"`
}

// FileReference is one entry of a media source field.
type FileReference struct {
	TargetID EntityID `json:"target_id"`
	URL      string   `json:"url"`
}

// ValueField is Drupal's generic single-value field item.
type ValueField struct {
	Value EntityID `json:"value"`
}

// MediaRecord is one entry of the node media list.
type MediaRecord struct {
	ID       []ValueField    `json:"mid"`
	Name     []ValueField    `json:"name"`
	MediaUse []TermReference `json:"field_media_use"`
	Image    []FileReference `json:"field_media_image"`
	Document []FileReference `json:"field_media_document"`
	File     []FileReference `json:"field_media_file"`
}

// MediaID returns the media entity ID, or an empty string when absent.
func (m MediaRecord) MediaID() string {
	if len(m.ID) == 0 {
		return ""
	}
	return m.ID[0].Value.String()
}

// FileEntity is the subset of a file entity needed to locate its content.
type FileEntity struct {
	FID []ValueField `json:"fid"`
	URI []struct {
		Value string `json:"value"`
		URL   string `json:"url"`
	} `json:"uri"`
}

// Term is the subset of a taxonomy term used for the media use summary.
type Term struct {
	TID         []ValueField `json:"tid"`
	ExternalURI []struct {
		URI string `json:"uri"`
	} `json:"field_external_uri"`
}

// Node is the subset of a node used for bag naming. The full document is
// kept in Raw so plugins can consume fields this type does not model.
type Node struct {
	NID  []ValueField    `json:"nid"`
	UUID []ValueField    `json:"uuid"`
	Raw  json.RawMessage `json:"-"`
}

// UUIDValue returns the node UUID, or an empty string when absent.
func (n Node) UUIDValue() string {
	if len(n.UUID) == 0 {
		return ""
	}
	return n.UUID[0].Value.String()
}
