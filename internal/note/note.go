// Package note manages the lifecycle of study notes.
package note

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentKind tags a note content item as free text or an image reference.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

// ContentItem is one entry of a note's ordered content list.
type ContentItem struct {
	Kind  ContentKind `json:"kind"`
	Value string      `json:"value"`
}

// UnmarshalJSON accepts the tagged object shape and, for documents written
// before content items carried a type tag, a bare string classified by its
// URL prefix.
func (item *ContentItem) UnmarshalJSON(data []byte) error {
	type taggedItem ContentItem
	var tagged taggedItem
	if err := json.Unmarshal(data, &tagged); err == nil && tagged.Kind != "" {
		*item = ContentItem(tagged)
		return nil
	}

	var legacy string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("content item is neither a tagged object nor a string: %w", err)
	}
	item.Value = legacy
	item.Kind = ContentText
	lowered := strings.ToLower(legacy)
	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		item.Kind = ContentImage
	}
	return nil
}

// Note is a user-authored study document composed of ordered text and
// image entries.
type Note struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	Content   []ContentItem `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TextContent returns the values of the text items, preserving order.
func (note Note) TextContent() []string {
	var texts []string
	for _, item := range note.Content {
		if item.Kind == ContentText {
			texts = append(texts, item.Value)
		}
	}
	return texts
}
