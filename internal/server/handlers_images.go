package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/project"
	"github.com/ironsheep/dss-annotator/internal/render"
)

// === Image Handlers ===

// imageInfo describes a loaded image.
type imageInfo struct {
	Path          string `json:"path"`
	Hash          string `json:"hash"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	SourceWidth   int    `json:"source_width"`
	SourceHeight  int    `json:"source_height"`
	Placeholder   bool   `json:"placeholder,omitempty"`
	Working       bool   `json:"working"`
	ThumbnailPNG  string `json:"thumbnail_base64,omitempty"`
	ThumbnailMime string `json:"thumbnail_mime_type,omitempty"`
}

func (s *Server) info(img *imagestore.Image) imageInfo {
	return imageInfo{
		Path:         img.Path,
		Hash:         img.Hash,
		Width:        img.Width(),
		Height:       img.Height(),
		SourceWidth:  img.SourceWidth,
		SourceHeight: img.SourceHeight,
		Placeholder:  img.Placeholder,
		Working:      s.project.Working().Hash == img.Hash,
	}
}

type imageLoadFileArgs struct {
	Path    string `json:"path"`
	Working *bool  `json:"working"`
}

func (s *Server) handleImageLoadFile(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.ingester.FromFile(a.Path)
	if err != nil {
		return nil, err
	}
	s.addImage(ctx, img, a.Working)
	return s.info(img), nil
}

type imageLoadBytesArgs struct {
	Data    string `json:"data"`
	Name    string `json:"name"`
	Working *bool  `json:"working"`
}

func (s *Server) handleImageLoadBytes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadBytesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	img, err := s.ingester.FromBytes(data, a.Name)
	if err != nil {
		return nil, err
	}
	if img.Path == "" {
		img.Path = img.Hash
	}
	s.addImage(ctx, img, a.Working)
	return s.info(img), nil
}

type imageLoadItemArgs struct {
	ID      string `json:"id"`
	Working *bool  `json:"working"`
}

func (s *Server) handleImageLoadItem(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadItemArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, fmt.Errorf("no key-value store configured")
	}
	img, err := s.store.Fetch(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	s.addImage(ctx, img, a.Working)
	return s.info(img), nil
}

type itemsListArgs struct {
	Filter string `json:"filter"`
}

func (s *Server) handleItemsList(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a itemsListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, fmt.Errorf("no key-value store configured")
	}
	items, err := s.store.List(ctx, a.Filter)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"items": items,
		"count": len(items),
	}, nil
}

type imagesListArgs struct {
	Thumbnails bool `json:"thumbnails"`
}

func (s *Server) handleImagesList(args json.RawMessage) (interface{}, error) {
	var a imagesListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	items := s.library.Items()
	out := make([]imageInfo, 0, len(items))
	for _, img := range items {
		info := s.info(img)
		if a.Thumbnails {
			thumb := render.FitThumbnail(img.Image, s.cfg.Images.ThumbnailWidth, s.cfg.Images.ThumbnailHeight)
			data, err := pngBase64(thumb)
			if err != nil {
				return nil, err
			}
			info.ThumbnailPNG = data
			info.ThumbnailMime = "image/png"
		}
		out = append(out, info)
	}
	return map[string]interface{}{
		"images":  out,
		"working": s.project.Working().Path,
	}, nil
}

type imageKeyArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageSetWorking(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageKeyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, ok := s.findImage(a.Path)
	if !ok {
		return nil, fmt.Errorf("image not loaded: %s", a.Path)
	}
	s.setWorking(ctx, img)
	return s.info(img), nil
}

func (s *Server) handleImageRemove(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageKeyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, ok := s.findImage(a.Path)
	if !ok {
		return nil, fmt.Errorf("image not loaded: %s", a.Path)
	}
	fallback, wasWorking := s.project.RemoveThumbnail(img.Path)
	s.library.Remove(img.Hash)

	result := map[string]interface{}{
		"removed": img.Path,
		"working": s.project.Working().Path,
	}
	if !wasWorking {
		return result, nil
	}
	next, ok := s.findImage(fallback)
	if fallback == "" || !ok {
		s.project.ClearWorkingImage()
		s.panel.Show(ctx, "")
		result["working"] = ""
		return result, nil
	}
	s.setWorking(ctx, next)
	result["working"] = next.Path
	return result, nil
}

func (s *Server) handleImageHide() (interface{}, error) {
	hidden, err := s.project.ToggleHideImage()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"hidden": hidden}, nil
}

type displayFrameArgs struct {
	OffsetX       int `json:"offset_x"`
	OffsetY       int `json:"offset_y"`
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`
}

func (s *Server) handleDisplayFrame(args json.RawMessage) (interface{}, error) {
	var a displayFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.DisplayWidth < 1 || a.DisplayHeight < 1 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", a.DisplayWidth, a.DisplayHeight)
	}
	w := s.project.Working()
	f := geometry.Frame{
		OffsetX:       a.OffsetX,
		OffsetY:       a.OffsetY,
		DisplayWidth:  a.DisplayWidth,
		DisplayHeight: a.DisplayHeight,
		SourceWidth:   w.Frame.SourceWidth,
		SourceHeight:  w.Frame.SourceHeight,
	}
	if err := s.project.UpdateFrame(f); err != nil {
		return nil, err
	}
	return s.project.Working(), nil
}

type gridSpacingArgs struct {
	Spacing int `json:"spacing"`
	Delta   int `json:"delta"`
}

func (s *Server) handleGridSpacing(args json.RawMessage) (interface{}, error) {
	var a gridSpacingArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var spacing int
	switch {
	case a.Spacing > 0:
		spacing = s.project.SetGridSpacing(a.Spacing)
	case a.Delta != 0:
		spacing = s.project.AdjustGridSpacing(a.Delta)
	default:
		spacing = s.project.Grid().ColSpacing
	}
	return map[string]interface{}{"spacing": spacing}, nil
}

func (s *Server) handleOverlay() (interface{}, error) {
	w := s.project.Working()
	if w.Hash == "" {
		return nil, project.ErrNoWorkingImage
	}
	img, ok := s.library.Get(w.Hash)
	if !ok {
		return nil, fmt.Errorf("working image %s is not loaded", w.Path)
	}
	return s.renderer.Overlays.DrawResult(img.Image, s.project.TakeOverlay())
}

// === Selection Handlers ===

type pointArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleClick(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.project.Click(a.X, a.Y)
}

type segmentArgs struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (s *Server) handleSegment(args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	results, err := s.project.Segment(a.X1, a.Y1, a.X2, a.Y2)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"clicks": results,
		"count":  len(results),
	}, nil
}

type lineArgs struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Axis string  `json:"axis"`
}

func (s *Server) handleLine(args json.RawMessage) (interface{}, error) {
	var a lineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	axis := geometry.ParseAxis(a.Axis)
	if axis == geometry.AxisNone {
		return nil, fmt.Errorf("invalid axis %q: use x or y", a.Axis)
	}
	results, err := s.project.Line(a.X, a.Y, axis)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"clicks": results,
		"count":  len(results),
	}, nil
}

type groupArgs struct {
	Group string `json:"group"`
}

func (s *Server) handleRedrawBegin(args json.RawMessage) (interface{}, error) {
	var a groupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.BeginRedraw(a.Group); err != nil {
		return nil, err
	}
	return map[string]interface{}{"redraw": a.Group}, nil
}

func (s *Server) handleRedrawCancel() (interface{}, error) {
	name, active := s.project.RedrawGroup()
	s.project.CancelRedraw()
	return map[string]interface{}{"cancelled": active, "group": name}, nil
}
