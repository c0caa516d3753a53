package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/pipeline"
)

// ItemPrefix marks thumbnails that came from the image store rather than
// from a file. Only those can be run through pipes.
const ItemPrefix = "glworb:"

// RuleResult reports what adding a rule did.
type RuleResult struct {
	Rule *model.Rule `json:"rule"`

	// Pipe is set when the rule's source field names a group.
	Pipe *pipeline.Pipe `json:"pipe,omitempty"`

	// Applied lists the items the rules were requested for.
	Applied []string `json:"applied,omitempty"`
}

// AddRule creates a rule. Symbols without an editing shape are stored as
// given; a known symbol with the wrong parameters is rejected.
//
// When the source field names a group, a crop and OCR pipe over the group's
// scaled bounding box is registered. The OCR text is written to the source
// field, which is the field the rule reads. Every loaded store item is run
// through the pipe and then through the registered rules. Failures of the
// pipeline collaborator become status messages; the rule is kept.
func (p *Project) AddRule(ctx context.Context, source, symbol string, params []string, dest, result string) (RuleResult, error) {
	if err := model.CheckParams(symbol, params); err != nil && !errors.Is(err, model.ErrUnknownComparator) {
		return RuleResult{}, err
	}
	r := model.NewRule(source, symbol, params, dest, result)

	p.mu.Lock()
	p.rules = append(p.rules, r)
	var group *model.Group
	if g := p.findGroupLocked(source); g != nil {
		group = g.Clone()
	}
	var items []string
	for _, t := range p.session.Thumbnails {
		if strings.HasPrefix(t, ItemPrefix) {
			items = append(items, t)
		}
	}
	p.mu.Unlock()

	res := RuleResult{Rule: r.Clone()}
	if p.pipelines == nil {
		return res, nil
	}
	if _, err := p.pipelines.AddRule(ctx, r); err != nil {
		p.Statusf("register rule %q: %v", r.String(), err)
		return res, nil
	}

	var pipes []pipeline.Pipe
	if group != nil {
		pipe, err := pipeline.NewPipe(group, source, p.vertical)
		if err != nil {
			p.Statusf("pipe for group %s: %v", group.Name, err)
		} else if err := p.pipelines.AddPipe(ctx, pipe); err != nil {
			p.Statusf("register pipe %s: %v", pipe.Name, err)
		} else {
			pipes = append(pipes, pipe)
			res.Pipe = &pipe
		}
	}

	res.Applied = p.applyRules(ctx, items, pipes)
	return res, nil
}

// applyRules runs pipes over items and requests the registered rules for
// each. It returns the items that were requested.
func (p *Project) applyRules(ctx context.Context, items []string, pipes []pipeline.Pipe) []string {
	if len(items) == 0 {
		return nil
	}
	names, err := p.pipelines.Rules(ctx)
	if err != nil {
		p.Statusf("list rules: %v", err)
		return nil
	}
	var applied []string
	for _, item := range items {
		for _, pipe := range pipes {
			if err := p.pipelines.RunPipe(ctx, pipe.Name, item, p.pipeEnv); err != nil {
				p.Statusf("%v", err)
			}
		}
		if err := p.pipelines.RequestRules(ctx, item, names); err != nil {
			p.Statusf("request rules for %s: %v", item, err)
			continue
		}
		applied = append(applied, item)
	}
	return applied
}

// RemoveRule deletes the rule with id.
func (p *Project) RemoveRule(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.rules {
		if r.ID == id {
			p.rules = append(p.rules[:i], p.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// Rules returns copies of the rules in creation order.
func (p *Project) Rules() []*model.Rule {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*model.Rule, 0, len(p.rules))
	for _, r := range p.rules {
		out = append(out, r.Clone())
	}
	return out
}
