package project

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/pipeline"
)

// maxStatus bounds the status log.
const maxStatus = 100

// PaletteEntry is the palette value for one category.
type PaletteEntry struct {
	Fill string `json:"fill"`
}

// Derived holds the dictionaries recomputed after every category change.
type Derived struct {
	Categories map[string]int          `json:"categories"`
	Palette    map[string]PaletteEntry `json:"palette"`
	Order      map[string]float64      `json:"order"`
}

// View is what the renderer draws project previews from.
type View struct {
	Attributes []Attribute `json:"attributes"`
	Derived

	// CategoryOrder lists category names sorted by rough order.
	CategoryOrder []string `json:"category_order"`
}

// Renderer regenerates the project previews.
type Renderer interface {
	RenderProject(v View) error
}

// Pipelines registers rules and pipes and applies them to store items.
type Pipelines interface {
	AddRule(ctx context.Context, r *model.Rule) (string, error)
	AddPipe(ctx context.Context, p pipeline.Pipe) error
	Rules(ctx context.Context) ([]string, error)
	RunPipe(ctx context.Context, name, item string, env map[string]string) error
	RequestRules(ctx context.Context, item string, rules []string) error
}

// Options configures a Project. Zero values are usable.
type Options struct {
	Renderer  Renderer
	Pipelines Pipelines

	// VerticalCorrection is subtracted from generated crop rectangles.
	VerticalCorrection int

	// PipeEnv is passed to every pipe run.
	PipeEnv map[string]string

	// GridSpacing is the initial row and column spacing.
	GridSpacing int
}

// StatusMessage is one entry of the status log.
type StatusMessage struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Project is the aggregate root.
type Project struct {
	mu sync.Mutex

	attrs      Attributes
	groups     []*model.Group
	categories model.CategoryList
	rules      []*model.Rule
	derived    Derived

	session   Session
	working   Working
	hideImage bool

	colSpacing int
	rowSpacing int

	saved  *model.Defaults
	stale  []string
	redraw *redrawState

	status []StatusMessage

	renderer  Renderer
	pipelines Pipelines
	vertical  int
	pipeEnv   map[string]string
}

// New returns an empty project.
func New(opts Options) *Project {
	spacing := opts.GridSpacing
	if spacing < 1 {
		spacing = geometry.DefaultSpacing
	}
	p := &Project{
		colSpacing: spacing,
		rowSpacing: spacing,
		saved:      model.NewDefaults(),
		renderer:   opts.Renderer,
		pipelines:  opts.Pipelines,
		vertical:   opts.VerticalCorrection,
		pipeEnv:    opts.PipeEnv,
	}
	p.updateDerivedLocked()
	return p
}

// Statusf logs a message and keeps it for the display surface.
func (p *Project) Statusf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Print(msg)
	p.mu.Lock()
	p.status = append(p.status, StatusMessage{Time: time.Now(), Message: msg})
	if len(p.status) > maxStatus {
		p.status = p.status[len(p.status)-maxStatus:]
	}
	p.mu.Unlock()
}

// Status returns the recent status messages, oldest first.
func (p *Project) Status() []StatusMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]StatusMessage(nil), p.status...)
}

// render hands v to the renderer. It must be called without the lock held.
func (p *Project) render(v View) {
	if p.renderer == nil {
		return
	}
	if err := p.renderer.RenderProject(v); err != nil {
		p.Statusf("render project: %v", err)
	}
}

// View returns the renderer view.
func (p *Project) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Project) viewLocked() View {
	v := View{
		Attributes: p.attrs.All(),
		Derived: Derived{
			Categories: make(map[string]int, len(p.derived.Categories)),
			Palette:    make(map[string]PaletteEntry, len(p.derived.Palette)),
			Order:      make(map[string]float64, len(p.derived.Order)),
		},
	}
	for k, val := range p.derived.Categories {
		v.Categories[k] = val
	}
	for k, val := range p.derived.Palette {
		v.Palette[k] = val
	}
	for k, val := range p.derived.Order {
		v.Order[k] = val
	}
	for _, c := range p.categories.Items() {
		v.CategoryOrder = append(v.CategoryOrder, c.Name)
	}
	return v
}

// updateDerivedLocked rebuilds the category dictionaries from scratch, which
// also drops entries under names that no longer exist.
func (p *Project) updateDerivedLocked() {
	d := Derived{
		Categories: make(map[string]int),
		Palette:    make(map[string]PaletteEntry),
		Order:      make(map[string]float64),
	}
	for _, c := range p.categories.Items() {
		d.Categories[c.Name] = c.RoughAmount
		d.Palette[c.Name] = PaletteEntry{Fill: c.Color.Hex()}
		d.Order[c.Name] = c.RoughOrder
	}
	p.derived = d
}

// Attribute returns a project attribute.
func (p *Project) Attribute(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attrs.Get(name)
}

// Attributes returns all project attributes in order.
func (p *Project) Attributes() []Attribute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attrs.All()
}

// SetAttribute sets a project attribute and regenerates the previews.
// Names must pass CheckAttributeName.
func (p *Project) SetAttribute(name, value string) error {
	if err := CheckAttributeName(name); err != nil {
		return err
	}
	p.mu.Lock()
	p.attrs.Set(name, value)
	v := p.viewLocked()
	p.mu.Unlock()
	p.render(v)
	return nil
}

// PublishKey is the key the project is published under.
func (p *Project) PublishKey() string {
	name, _ := p.Attribute("name")
	return "project:" + name
}
