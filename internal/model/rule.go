package model

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Comparator symbols understood by the rule compiler.
const (
	SymbolCaseInsensitiveEquals = "~~"
	SymbolIsType                = "is"
	SymbolBetween               = "between"
)

// TypeNames are the choices for the "is" comparator.
var TypeNames = []string{"int", "roman", "str"}

// Comparator describes the parameter shape the editor offers for a symbol.
type Comparator struct {
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	Arity       int      `json:"arity"`
	Choices     []string `json:"choices,omitempty"`
}

// Comparators is the closed table of symbols with an editing shape. Rules
// may carry other symbols; they are stored and exported as-is.
var Comparators = []Comparator{
	{Symbol: SymbolCaseInsensitiveEquals, Description: "case insensitive equals", Arity: 1},
	{Symbol: SymbolIsType, Description: "is of type", Arity: 1, Choices: TypeNames},
	{Symbol: SymbolBetween, Description: "integer range between", Arity: 2},
}

// LookupComparator finds the editing shape for symbol.
func LookupComparator(symbol string) (Comparator, bool) {
	for _, c := range Comparators {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return Comparator{}, false
}

// ValidateParams checks params against the comparator's shape.
func (c Comparator) ValidateParams(params []string) error {
	if len(params) != c.Arity {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrParameterCount, c.Symbol, c.Arity, len(params))
	}
	if len(c.Choices) > 0 {
		for _, p := range params {
			if !contains(c.Choices, p) {
				return fmt.Errorf("%s parameter %q not one of %s", c.Symbol, p, strings.Join(c.Choices, ", "))
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Rule maps a source field and comparator to a destination field and result.
type Rule struct {
	ID          string   `json:"id"`
	SourceField string   `json:"source_field"`
	Symbol      string   `json:"comparator_symbol"`
	Params      []string `json:"comparator_params"`
	DestField   string   `json:"dest_field"`
	Result      string   `json:"rule_result"`
	RoughAmount int      `json:"rough_amount,omitempty"`
}

// NewRule returns a rule with a fresh id.
func NewRule(source, symbol string, params []string, dest, result string) *Rule {
	return &Rule{
		ID:          uuid.NewString(),
		SourceField: source,
		Symbol:      symbol,
		Params:      append([]string(nil), params...),
		DestField:   dest,
		Result:      result,
	}
}

// Quote wraps s in double quotes, adding only the ones that are missing.
// The empty string becomes "".
func Quote(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.HasPrefix(s, `"`) {
		s = `"` + s
	}
	if !strings.HasSuffix(s, `"`) || len(s) == 1 {
		s += `"`
	}
	return s
}

// ParamsString joins the parameters with single spaces. For the ~~
// comparator the first parameter is quoted.
func (r *Rule) ParamsString() string {
	params := append([]string(nil), r.Params...)
	if r.Symbol == SymbolCaseInsensitiveEquals && len(params) > 0 {
		params[0] = Quote(params[0])
	}
	return strings.Join(params, " ")
}

// String renders the canonical form
//
//	source symbol params -> dest "result"
func (r *Rule) String() string {
	return fmt.Sprintf("%s %s %s -> %s %s",
		r.SourceField, r.Symbol, r.ParamsString(), r.DestField, Quote(r.Result))
}

// Clone returns a deep copy.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Params = append([]string(nil), r.Params...)
	return &c
}

// RuleElement is the <rule> XML element.
type RuleElement struct {
	XMLName     xml.Name           `xml:"rule"`
	Source      string             `xml:"source,attr"`
	Destination string             `xml:"destination,attr"`
	Result      string             `xml:"result,attr"`
	Parameters  []ParameterElement `xml:"parameter"`
}

// ParameterElement is one <parameter> child of a rule. The symbol is
// repeated on every parameter.
type ParameterElement struct {
	Symbol string `xml:"symbol,attr"`
	Values string `xml:"values,attr"`
}

// XML returns the rule as an XML element, one parameter child per
// comparator parameter.
func (r *Rule) XML() RuleElement {
	e := RuleElement{
		Source:      r.SourceField,
		Destination: r.DestField,
		Result:      r.Result,
	}
	for _, p := range r.Params {
		e.Parameters = append(e.Parameters, ParameterElement{Symbol: r.Symbol, Values: p})
	}
	return e
}

// MarshalFragment encodes the rule element on its own, as sent to the rule
// compiler.
func (r *Rule) MarshalFragment() ([]byte, error) {
	return xml.Marshal(r.XML())
}

// Rule converts the element back into a rule with a fresh id. The symbol is
// taken from the parameters; an element without parameters has no symbol.
func (e RuleElement) Rule() *Rule {
	r := &Rule{
		ID:          uuid.NewString(),
		SourceField: e.Source,
		DestField:   e.Destination,
		Result:      e.Result,
		Params:      []string{},
	}
	for _, p := range e.Parameters {
		r.Symbol = p.Symbol
		r.Params = append(r.Params, p.Values)
	}
	return r
}

// CheckParams validates params for symbol. Every rule needs at least one
// parameter, since the symbol is saved on the parameter elements. Symbols
// outside the table return ErrUnknownComparator; callers may still store
// such rules.
func CheckParams(symbol string, params []string) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: %s needs at least one", ErrParameterCount, symbol)
	}
	c, ok := LookupComparator(symbol)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComparator, symbol)
	}
	return c.ValidateParams(params)
}
