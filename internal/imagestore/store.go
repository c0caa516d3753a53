package imagestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/kv"
)

// ItemPattern matches image items in the key-value store.
const ItemPattern = "glworb:*"

// DefaultBinaryFields are the item fields that may name an image key, in the
// order they are tried.
var DefaultBinaryFields = []string{"binary_key", "binary", "image_binary_key"}

// Store acquires images from key-value store items.
type Store struct {
	KV       kv.Store
	Ingester Ingester

	// BinaryFields overrides DefaultBinaryFields when non-empty.
	BinaryFields []string
}

// NewStore returns a Store over s.
func NewStore(s kv.Store, in Ingester) *Store {
	return &Store{KV: s, Ingester: in}
}

func (s *Store) binaryFields() []string {
	if len(s.BinaryFields) > 0 {
		return s.BinaryFields
	}
	return DefaultBinaryFields
}

// Blob returns the image bytes referenced by item id, trying each binary
// field in order. It returns kv.ErrNotFound when no field leads to data.
func (s *Store) Blob(ctx context.Context, id string) ([]byte, error) {
	for _, field := range s.binaryFields() {
		key, err := s.KV.HGet(ctx, id, field)
		if err != nil {
			if !errors.Is(err, kv.ErrNotFound) {
				return nil, err
			}
			continue
		}
		if key == "" {
			continue
		}
		data, err := s.KV.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, kv.ErrNotFound) {
				return nil, err
			}
			continue
		}
		if len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no image data for %s: %w", id, kv.ErrNotFound)
}

// Fetch acquires the image for item id. An item with no decodable image
// yields a placeholder carrying the item's fields; only store errors are
// returned.
func (s *Store) Fetch(ctx context.Context, id string) (*Image, error) {
	data, err := s.Blob(ctx, id)
	switch {
	case err == nil:
		img, derr := s.Ingester.FromBytes(data, id)
		if derr == nil {
			return img, nil
		}
		log.Printf("item %s: %v, using placeholder", id, derr)
	case !errors.Is(err, kv.ErrNotFound):
		return nil, err
	}
	return s.placeholder(ctx, id)
}

func (s *Store) placeholder(ctx context.Context, id string) (*Image, error) {
	fields, err := s.KV.HGetAll(ctx, id)
	if err != nil {
		return nil, err
	}
	text := PrettyFormat(fields, id)
	if text == "" {
		text = id
	}
	size := s.Ingester.ResizeSize
	if size <= 0 {
		size = DefaultResizeSize
	}
	img := Placeholder(size, text)
	encoded, err := EncodeBytes(img, FormatJPG)
	if err != nil {
		return nil, err
	}
	return &Image{
		Hash:         Hash(encoded),
		Path:         id,
		Image:        img,
		SourceWidth:  size,
		SourceHeight: size,
		Placeholder:  true,
	}, nil
}

// Fields returns an item's fields.
func (s *Store) Fields(ctx context.Context, id string) (map[string]string, error) {
	return s.KV.HGetAll(ctx, id)
}

// Item is one listed store item.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// List returns every image item. A non-empty filter keeps only items whose
// formatted text contains it.
func (s *Store) List(ctx context.Context, filter string) ([]Item, error) {
	ids, err := s.KV.Keys(ctx, ItemPattern)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		fields, err := s.KV.HGetAll(ctx, id)
		if err != nil {
			return nil, err
		}
		text := PrettyFormat(fields, id)
		if filter != "" && !strings.Contains(text, filter) {
			continue
		}
		items = append(items, Item{ID: id, Text: text})
	}
	return items, nil
}
