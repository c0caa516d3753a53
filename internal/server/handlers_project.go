package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/persist"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// === Category Handlers ===

type categoryAddArgs struct {
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	RoughAmount *int     `json:"rough_amount"`
	RoughOrder  *float64 `json:"rough_order"`
}

func (s *Server) handleCategoryAdd(args json.RawMessage) (interface{}, error) {
	var a categoryAddArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c := model.NewCategory(a.Name)
	if a.Color != "" {
		col, err := model.ParseColor(a.Color)
		if err != nil {
			return nil, err
		}
		c.Color = col
	}
	if a.RoughAmount != nil {
		c.SetAmount(*a.RoughAmount)
	}
	if a.RoughOrder != nil {
		c.SetOrder(*a.RoughOrder)
	}
	if err := s.project.AddCategory(c); err != nil {
		return nil, err
	}
	return s.project.Category(c.Name)
}

func (s *Server) handleCategoryList() (interface{}, error) {
	cats := s.project.Categories()
	return map[string]interface{}{
		"categories": cats,
		"count":      len(cats),
		"derived":    s.project.Derived(),
	}, nil
}

func (s *Server) handleCategoryRename(args json.RawMessage) (interface{}, error) {
	var a renameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RenameCategory(a.Name, a.NewName); err != nil {
		return nil, err
	}
	return s.project.Category(a.NewName)
}

func (s *Server) handleCategoryColor(args json.RawMessage) (interface{}, error) {
	var a colorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := model.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	if err := s.project.RecolorCategory(a.Name, c); err != nil {
		return nil, err
	}
	return s.project.Category(a.Name)
}

type categoryAmountArgs struct {
	Name        string `json:"name"`
	RoughAmount int    `json:"rough_amount"`
}

func (s *Server) handleCategoryAmount(args json.RawMessage) (interface{}, error) {
	var a categoryAmountArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.SetCategoryAmount(a.Name, a.RoughAmount); err != nil {
		return nil, err
	}
	return s.project.Category(a.Name)
}

type categoryRangeArgs struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleCategoryRange(args json.RawMessage) (interface{}, error) {
	var a categoryRangeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.project.SetCategoryRange(a.Name, a.Start, a.End); err != nil {
		return nil, err
	}
	return s.project.Category(a.Name)
}

type categoryOrderArgs struct {
	Name       string  `json:"name"`
	RoughOrder float64 `json:"rough_order"`
}

func (s *Server) handleCategoryOrder(args json.RawMessage) (interface{}, error) {
	var a categoryOrderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.SetCategoryOrder(a.Name, a.RoughOrder); err != nil {
		return nil, err
	}
	return s.handleCategoryList()
}

func (s *Server) handleCategoryRemove(args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RemoveCategory(a.Name); err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": a.Name}, nil
}

// === Rule Handlers ===

// ruleInfo is a rule with its canonical text.
type ruleInfo struct {
	*model.Rule
	Text string `json:"text"`
}

func (s *Server) handleRuleComparators() (interface{}, error) {
	return map[string]interface{}{
		"comparators": model.Comparators,
	}, nil
}

type ruleAddArgs struct {
	Source      string   `json:"source"`
	Symbol      string   `json:"symbol"`
	Params      []string `json:"params"`
	Destination string   `json:"destination"`
	Result      string   `json:"result"`
}

func (s *Server) handleRuleAdd(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ruleAddArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" || a.Destination == "" {
		return nil, fmt.Errorf("source and destination are required")
	}
	res, err := s.project.AddRule(ctx, a.Source, a.Symbol, a.Params, a.Destination, a.Result)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"rule":    ruleInfo{Rule: res.Rule, Text: res.Rule.String()},
		"pipe":    res.Pipe,
		"applied": res.Applied,
	}, nil
}

func (s *Server) handleRuleList() (interface{}, error) {
	rules := s.project.Rules()
	out := make([]ruleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleInfo{Rule: r, Text: r.String()})
	}
	return map[string]interface{}{
		"rules": out,
		"count": len(out),
	}, nil
}

type ruleRemoveArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleRuleRemove(args json.RawMessage) (interface{}, error) {
	var a ruleRemoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RemoveRule(a.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": a.ID}, nil
}

// === Project Handlers ===

func (s *Server) handleProjectAttributes() (interface{}, error) {
	return map[string]interface{}{
		"attributes":  s.project.Attributes(),
		"standard":    project.StandardAttributes,
		"publish_key": s.project.PublishKey(),
	}, nil
}

type setAttributeArgs struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleProjectSetAttribute(args json.RawMessage) (interface{}, error) {
	var a setAttributeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.project.SetAttribute(a.Name, a.Value); err != nil {
		return nil, err
	}
	return s.handleProjectAttributes()
}

// previewImage is one rendered project image.
type previewImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleProjectPreview() (interface{}, error) {
	p := s.renderer.Previews()
	if p.Overview == nil {
		// Nothing has changed yet; render the empty project once.
		if err := s.renderer.RenderProject(s.project.View()); err != nil {
			return nil, err
		}
		p = s.renderer.Previews()
	}
	out := make(map[string]previewImage, 3)
	for name, img := range map[string]image.Image{
		"overview":   p.Overview,
		"thumbnail":  p.Thumbnail,
		"dimensions": p.Dimensions,
	} {
		data, err := pngBase64(img)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = previewImage{
			Width:       img.Bounds().Dx(),
			Height:      img.Bounds().Dy(),
			ImageBase64: data,
			MimeType:    "image/png",
		}
	}
	return out, nil
}

func (s *Server) handleXMLPreview() (interface{}, error) {
	data, err := persist.Marshal(s.project.Snapshot())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"xml": string(data)}, nil
}

type exportArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = persist.ModeXML
	}
	key := s.project.PublishKey()
	out, err := s.exporter.Export(ctx, s.project.Snapshot(), a.Mode, key)
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{"mode": a.Mode}
	if a.Mode == persist.ModePublish {
		result["key"] = out
	} else {
		result["path"] = out
	}
	return result, nil
}

func (s *Server) handleSessionSave() (interface{}, error) {
	if err := s.SaveSession(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session":  s.cfg.SessionPath(),
		"defaults": s.cfg.DefaultsPath(),
	}, nil
}

func (s *Server) handleStatus() (interface{}, error) {
	return map[string]interface{}{
		"messages": s.project.Status(),
	}, nil
}

func (s *Server) handleInfoPanel(ctx context.Context) (interface{}, error) {
	if s.panel.Current() != "" {
		s.panel.Refresh(ctx)
	}
	return s.panel.Snapshot(), nil
}
