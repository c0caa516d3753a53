package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/kv"
	"github.com/ironsheep/dss-annotator/internal/model"
)

// Key prefixes in the key-value store.
const (
	PipePrefix        = "pipe:"
	RulePrefix        = "rule:"
	RuleRequestPrefix = "rule_request:"
)

// DefaultExpire is how long registered pipes and rules live.
const DefaultExpire = 1000 * time.Second

// TextReader reads text from encoded image data.
type TextReader interface {
	Text(data []byte) (string, error)
}

// Service registers pipes and rules in the key-value store and runs pipes
// locally against store items.
//
// Rules are only registered and requested here; evaluating them is the job
// of the external rules service watching the rule_request keys.
type Service struct {
	KV     kv.Store
	Expire time.Duration
	OCR    TextReader
}

// NewService returns a Service over store.
func NewService(store kv.Store, expire time.Duration, ocr TextReader) *Service {
	if expire <= 0 {
		expire = DefaultExpire
	}
	return &Service{KV: store, Expire: expire, OCR: ocr}
}

// RuleName returns "r" followed by the hex SHA-224 of the rule's string
// form, so equal rules share a name.
func RuleName(r *model.Rule) string {
	sum := sha256.Sum224([]byte(r.String()))
	return "r" + hex.EncodeToString(sum[:])
}

// AddRule registers r and returns its name.
func (s *Service) AddRule(ctx context.Context, r *model.Rule) (string, error) {
	name := RuleName(r)
	if err := s.KV.Set(ctx, RulePrefix+name, []byte(r.String()), s.Expire); err != nil {
		return "", fmt.Errorf("add rule %s: %w", name, err)
	}
	return name, nil
}

// AddPipe registers p under its name.
func (s *Service) AddPipe(ctx context.Context, p Pipe) error {
	if err := s.KV.Set(ctx, PipePrefix+p.Name, []byte(p.String()), s.Expire); err != nil {
		return fmt.Errorf("add pipe %s: %w", p.Name, err)
	}
	return nil
}

// Rules returns the names of every registered rule.
func (s *Service) Rules(ctx context.Context) ([]string, error) {
	keys, err := s.KV.Keys(ctx, RulePrefix+"*")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, RulePrefix))
	}
	sort.Strings(names)
	return names, nil
}

// RequestRules asks the rules service to apply rules to item.
func (s *Service) RequestRules(ctx context.Context, item string, rules []string) error {
	if len(rules) == 0 {
		return nil
	}
	return s.KV.Set(ctx, RuleRequestPrefix+item, []byte(strings.Join(rules, "\n")), s.Expire)
}

// Program loads and parses a registered pipe.
func (s *Service) Program(ctx context.Context, name string) (Program, error) {
	data, err := s.KV.Get(ctx, PipePrefix+name)
	if err != nil {
		return Program{}, fmt.Errorf("pipe %s: %w", name, err)
	}
	return ParsePipe(string(data))
}

// RunPipe runs the registered pipe name against store item. env["key"]
// names the item field holding the source image key and env["key_prefix"]
// prefixes keys written by crop steps.
func (s *Service) RunPipe(ctx context.Context, name, item string, env map[string]string) error {
	prog, err := s.Program(ctx, name)
	if err != nil {
		return err
	}
	for _, step := range prog.Steps {
		switch step.Call {
		case StepCropToKey:
			err = s.cropToKey(ctx, item, step, env)
		case StepOCRKey:
			err = s.ocrKey(ctx, item, step)
		default:
			err = fmt.Errorf("unknown step %q", step.Call)
		}
		if err != nil {
			return fmt.Errorf("pipe %s on %s: %w", name, item, err)
		}
	}
	return nil
}

func (s *Service) fieldBlob(ctx context.Context, item, field string) ([]byte, error) {
	key, err := s.KV.HGet(ctx, item, field)
	if err != nil {
		return nil, err
	}
	return s.KV.Get(ctx, key)
}

func (s *Service) cropToKey(ctx context.Context, item string, step Step, env map[string]string) error {
	xywh, err := step.IntArgs(4)
	if err != nil {
		return err
	}
	if len(step.Args) < 5 {
		return fmt.Errorf("%s: missing destination key", step.Call)
	}
	dest := step.Args[4]

	field := env["key"]
	if field == "" {
		field = imagestore.DefaultBinaryFields[0]
	}
	data, err := s.fieldBlob(ctx, item, field)
	if err != nil {
		return err
	}
	src, err := imagestore.Decode(data)
	if err != nil {
		return err
	}

	rect := image.Rect(xywh[0], xywh[1], xywh[0]+xywh[2], xywh[1]+xywh[3]).Intersect(src.Bounds())
	if rect.Empty() {
		return fmt.Errorf("crop (%d,%d %dx%d) outside image bounds %v", xywh[0], xywh[1], xywh[2], xywh[3], src.Bounds())
	}
	cropped := imaging.Crop(src, rect)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return fmt.Errorf("failed to encode cropped image: %w", err)
	}
	key := env["key_prefix"] + item + ":" + dest
	if err := s.KV.Set(ctx, key, buf.Bytes(), s.Expire); err != nil {
		return err
	}
	return s.KV.HSet(ctx, item, map[string]string{dest: key})
}

func (s *Service) ocrKey(ctx context.Context, item string, step Step) error {
	if len(step.Args) < 2 {
		return fmt.Errorf("%s: want source key and destination field", step.Call)
	}
	if s.OCR == nil {
		return fmt.Errorf("%s: no OCR reader configured", step.Call)
	}
	data, err := s.fieldBlob(ctx, item, step.Args[0])
	if err != nil {
		return err
	}
	text, err := s.OCR.Text(data)
	if err != nil {
		return err
	}
	log.Printf("pipe ocr %s %s = %q", item, step.Args[1], text)
	return s.KV.HSet(ctx, item, map[string]string{step.Args[1]: text})
}
