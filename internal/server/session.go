package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/persist"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// acquire loads the image at path: a store item for item keys, a file
// otherwise.
func (s *Server) acquire(ctx context.Context, path string) (*imagestore.Image, error) {
	if strings.HasPrefix(path, project.ItemPrefix) {
		if s.store == nil {
			return nil, fmt.Errorf("load %s: no key-value store configured", path)
		}
		return s.store.Fetch(ctx, path)
	}
	return s.ingester.FromFile(path)
}

// addImage records img as a loaded thumbnail. It becomes the working image
// when working is set, or when working is nil and nothing is open.
func (s *Server) addImage(ctx context.Context, img *imagestore.Image, working *bool) bool {
	s.library.Add(img)
	s.project.AddThumbnail(img.Path)
	makeWorking := s.project.Working().Hash == ""
	if working != nil {
		makeWorking = *working
	}
	if makeWorking {
		s.setWorking(ctx, img)
	}
	return makeWorking
}

// setWorking opens img for annotation. The frame starts at the image's
// own size with no letterboxing until the display reports otherwise.
func (s *Server) setWorking(ctx context.Context, img *imagestore.Image) {
	s.project.SetWorkingImage(project.Working{
		Path: img.Path,
		Hash: img.Hash,
		Frame: geometry.Frame{
			DisplayWidth:  img.Width(),
			DisplayHeight: img.Height(),
			SourceWidth:   img.SourceWidth,
			SourceHeight:  img.SourceHeight,
		},
	})
	if strings.HasPrefix(img.Path, project.ItemPrefix) {
		s.panel.Show(ctx, img.Path)
	} else {
		s.panel.Show(ctx, "")
	}
}

// findImage looks a loaded image up by path or hash.
func (s *Server) findImage(key string) (*imagestore.Image, bool) {
	if img, ok := s.library.Get(key); ok {
		return img, true
	}
	for _, img := range s.library.Items() {
		if img.Path == key {
			return img, true
		}
	}
	return nil, false
}

// RestoreSession merges snaps into the project and reloads the images
// they reference. Images that cannot be loaded become status messages.
func (s *Server) RestoreSession(ctx context.Context, snaps []project.Snapshot) {
	for _, snap := range snaps {
		s.project.Restore(snap)
	}
	sess := s.project.Session()
	f := false
	for _, path := range sess.Thumbnails {
		img, err := s.acquire(ctx, path)
		if err != nil {
			s.project.Statusf("restore %s: %v", path, err)
			continue
		}
		s.addImage(ctx, img, &f)
	}
	if sess.WorkingImage == "" {
		return
	}
	img, ok := s.findImage(sess.WorkingImage)
	if !ok {
		var err error
		if img, err = s.acquire(ctx, sess.WorkingImage); err != nil {
			s.project.Statusf("restore working image %s: %v", sess.WorkingImage, err)
			return
		}
		s.library.Add(img)
		s.project.AddThumbnail(img.Path)
	}
	s.setWorking(ctx, img)
}

// SaveSession writes the session file and the defaults file.
func (s *Server) SaveSession() error {
	if err := persist.SaveFile(s.cfg.SessionPath(), s.project.Snapshot()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := persist.SaveDefaults(s.cfg.DefaultsPath(), s.project.DefaultEntries()); err != nil {
		return fmt.Errorf("save defaults: %w", err)
	}
	return nil
}
