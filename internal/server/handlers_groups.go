package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/render"
)

// === Group Handlers ===

// groupInfo is a group with its derived rectangles.
type groupInfo struct {
	*model.Group
	BoundingRectangle *geometry.XYWH `json:"bounding_rectangle,omitempty"`
	ScaledRectangle   *geometry.Rect `json:"scaled_rectangle,omitempty"`
	ScaledXYWH        *geometry.XYWH `json:"scaled_xywh,omitempty"`
	SourceDimensions  [2]int         `json:"source_dimensions"`
}

func describeGroup(g *model.Group) groupInfo {
	info := groupInfo{Group: g, SourceDimensions: g.SourceDimensions()}
	if bbox, ok := g.BoundingRectangle(); ok {
		info.BoundingRectangle = &bbox
	}
	if scaled, xywh, ok := g.ScaledBoundingRectangle(); ok {
		info.ScaledRectangle = &scaled
		info.ScaledXYWH = &xywh
	}
	return info
}

func (s *Server) handleGroupList() (interface{}, error) {
	groups := s.project.Groups()
	out := make([]groupInfo, 0, len(groups))
	for _, g := range groups {
		out = append(out, describeGroup(g))
	}
	redraw, _ := s.project.RedrawGroup()
	return map[string]interface{}{
		"groups": out,
		"count":  len(out),
		"redraw": redraw,
	}, nil
}

type renameArgs struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

func (s *Server) handleGroupRename(args json.RawMessage) (interface{}, error) {
	var a renameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RenameGroup(a.Name, a.NewName); err != nil {
		return nil, err
	}
	g, err := s.project.Group(a.NewName)
	if err != nil {
		return nil, err
	}
	return describeGroup(g), nil
}

type colorArgs struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleGroupColor(args json.RawMessage) (interface{}, error) {
	var a colorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := model.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	if err := s.project.RecolorGroup(a.Name, c); err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": a.Name, "color": c}, nil
}

type nameArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleGroupHide(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	hidden, err := s.project.ToggleHideGroup(a.Name)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": a.Name, "hide": hidden}, nil
}

func (s *Server) handleGroupRemove(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RemoveGroup(a.Name); err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": a.Name}, nil
}

func (s *Server) handleGroupOCR(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.ocr == nil {
		return nil, fmt.Errorf("OCR is not available")
	}
	g, err := s.project.Group(a.Name)
	if err != nil {
		return nil, err
	}
	img, ok := s.library.Get(g.Source)
	if !ok {
		return nil, fmt.Errorf("source image of group %s is not loaded", g.Name)
	}
	crop, ok := render.CropGroup(img.Image, g)
	if !ok {
		return nil, fmt.Errorf("group %s has no area on its image", g.Name)
	}
	return s.ocr.ExtractImage(crop)
}
