package todo

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire shapes for the persisted list document. The document id is the
// storage key, so it is not repeated inside the document body. Optional
// fields (order, sortBy) are omitted entirely when absent; the backend
// rejects explicit nulls. Instants are encoded as RFC 3339 strings.

type documentItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	Order     *int      `json:"order,omitempty"`
}

type document struct {
	Name      string         `json:"name"`
	Items     []documentItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	SortBy    SortMode       `json:"sortBy,omitempty"`
}

// MarshalDocument encodes a list as its persisted document body.
func MarshalDocument(l List) ([]byte, error) {
	doc := document{
		Name:      l.Name,
		Items:     make([]documentItem, len(l.Items)),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		SortBy:    l.SortBy,
	}
	for i, it := range l.Items {
		doc.Items[i] = documentItem{
			ID:        it.ID,
			Text:      it.Text,
			Completed: it.Completed,
			CreatedAt: it.CreatedAt,
			Order:     it.Order,
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes a persisted document body back into a list,
// reattaching the storage key as the list id.
func UnmarshalDocument(id string, data []byte) (List, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return List{}, fmt.Errorf("failed to parse list document %s: %w", id, err)
	}
	l := List{
		ID:        id,
		Name:      doc.Name,
		Items:     make([]Item, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		SortBy:    doc.SortBy,
	}
	for i, it := range doc.Items {
		l.Items[i] = Item{
			ID:        it.ID,
			Text:      it.Text,
			Completed: it.Completed,
			CreatedAt: it.CreatedAt,
			Order:     it.Order,
		}
	}
	return l, nil
}
