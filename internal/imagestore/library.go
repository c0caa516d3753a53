package imagestore

import "sync"

// Library is the ordered set of loaded thumbnails, keyed by hash.
//
// Library is safe for concurrent use.
type Library struct {
	mu     sync.RWMutex
	order  []string
	images map[string]*Image
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{images: make(map[string]*Image)}
}

// Add appends img. Adding a hash that is already present replaces the
// stored image and keeps its position; it reports whether img was new.
func (l *Library) Add(img *Image) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.images[img.Hash]; ok {
		l.images[img.Hash] = img
		return false
	}
	l.images[img.Hash] = img
	l.order = append(l.order, img.Hash)
	return true
}

// Get returns the image with hash.
func (l *Library) Get(hash string) (*Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.images[hash]
	return img, ok
}

// Remove deletes hash and returns the image loaded before it, or the new
// first image when hash was first. prev is nil when the library is empty
// afterwards or hash was not loaded.
func (l *Library) Remove(hash string) (prev *Image, removed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, h := range l.order {
		if h != hash {
			continue
		}
		l.order = append(l.order[:i], l.order[i+1:]...)
		delete(l.images, hash)
		if len(l.order) == 0 {
			return nil, true
		}
		if i > 0 {
			i--
		}
		return l.images[l.order[i]], true
	}
	return nil, false
}

// Items returns the loaded images in load order.
func (l *Library) Items() []*Image {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Image, 0, len(l.order))
	for _, h := range l.order {
		out = append(out, l.images[h])
	}
	return out
}

// Paths returns the origin path of every loaded image, skipping images
// that have none.
func (l *Library) Paths() []string {
	var paths []string
	for _, img := range l.Items() {
		if img.Path != "" {
			paths = append(paths, img.Path)
		}
	}
	return paths
}

// Len returns the number of loaded images.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Clear removes every image.
func (l *Library) Clear() {
	l.mu.Lock()
	l.order = nil
	l.images = make(map[string]*Image)
	l.mu.Unlock()
}
