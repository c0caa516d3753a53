package imagestore

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Field is one row of the info panel.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`

	// Color is the hex color of the category whose name equals Value.
	Color string `json:"color,omitempty"`
}

// Panel holds a read-only view of the current item's fields. Refresh and
// Run only ever read the store.
type Panel struct {
	store *Store

	// CategoryColor maps a value to a category color for highlighting. It
	// may be nil.
	CategoryColor func(value string) (string, bool)

	mu      sync.RWMutex
	current string
	fields  []Field
	err     error
	updated time.Time
}

// NewPanel returns a panel reading from store.
func NewPanel(store *Store) *Panel {
	return &Panel{store: store}
}

// Show switches the panel to item id and refreshes it. An empty id clears
// the panel.
func (p *Panel) Show(ctx context.Context, id string) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	p.Refresh(ctx)
}

// Current returns the item being shown.
func (p *Panel) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Refresh re-reads the current item's fields.
func (p *Panel) Refresh(ctx context.Context) {
	id := p.Current()
	var (
		fields []Field
		err    error
	)
	if id != "" && p.store != nil {
		var m map[string]string
		m, err = p.store.Fields(ctx, id)
		for k, v := range m {
			f := Field{Name: k, Value: v}
			if p.CategoryColor != nil {
				f.Color, _ = p.CategoryColor(v)
			}
			fields = append(fields, f)
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	}
	if err != nil {
		log.Printf("refresh %s: %v", id, err)
	}

	p.mu.Lock()
	if p.current == id {
		p.fields = fields
		p.err = err
		p.updated = time.Now()
	}
	p.mu.Unlock()
}

// Snapshot is the panel's displayed state.
type Snapshot struct {
	ID      string    `json:"id"`
	Fields  []Field   `json:"fields"`
	Error   string    `json:"error,omitempty"`
	Updated time.Time `json:"updated"`
}

// Snapshot returns the current contents.
func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Snapshot{
		ID:      p.current,
		Fields:  append([]Field(nil), p.fields...),
		Updated: p.updated,
	}
	if p.err != nil {
		s.Error = p.err.Error()
	}
	return s
}

// Run refreshes the panel every interval until ctx is done.
func (p *Panel) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}
