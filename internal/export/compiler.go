// compiler.go — Timeline to test-script compilation.
// One fold turns a timeline snapshot into script lines; every framework is a
// Backend value that only supplies tables and boilerplate. Compile never
// mutates its input and never fails: unmapped steps are skipped and reported
// in Artifact.Warnings, an empty timeline yields the backend's placeholder.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ozdemirkulaoglu/dakka/internal/selector"
	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// ============================================
// Types
// ============================================

// Artifact is a compiled test script ready to be written to disk.
type Artifact struct {
	Framework types.Framework `json:"framework"`
	FileName  string          `json:"fileName"`
	Script    string          `json:"scriptText"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Step is one emitted unit: a single event, a group member or a block.
type Step struct {
	Type               types.EventType
	Selector           *types.Selector
	Frame              *types.Selector
	InIframe           bool
	URL                string
	Key                string
	Width              int
	Height             int
	AssertionType      types.AssertionType
	AssertionValue     string
	AssertionAttribute string
}

// Assertion carries the rendered operands of one assertion statement.
// Selector, Value and Attribute are already quoted literals.
type Assertion struct {
	Scope     string
	Locator   string
	Selector  string
	First     string
	Value     string
	RawValue  string
	Attribute string
}

// ActionFunc renders an element action from a located element expression.
type ActionFunc func(locator string, s Step) string

// PageActionFunc renders an action performed on the scope itself.
// An empty result skips the step.
type PageActionFunc func(scope, sel string, s Step) string

// AssertionFunc renders a complete assertion statement.
type AssertionFunc func(a Assertion) string

// Program is the per-framework boilerplate the fold writes around steps.
// Line-producing hooks return lines without the body indent.
type Program struct {
	Header            func(assertions bool) string
	Open              func(name string) string
	Close             string
	Indent            string
	Empty             string
	Literal           func(s string) string
	Prelude           func(url string, width, height int) []string
	FrameVars         []string
	FrameInit         func(frameSel string) []string
	Scope             func(inIframe bool) string
	Locate            func(scope, sel, first string) string
	FirstMatch        string
	Statement         func(expr string) string
	WaitForNavigation func(expr string) []string
	Resize            func(width, height int) string
}

// Backend is the data describing one export target.
type Backend struct {
	Framework   types.Framework
	FileName    string
	Selectors   selector.Resolver
	Actions     map[types.EventType]ActionFunc
	PageActions map[types.EventType]PageActionFunc
	Default     ActionFunc
	Assertions  map[types.AssertionType]AssertionFunc
	Program     Program
}

// ============================================
// Registry
// ============================================

// ErrNoBackend is returned for frameworks without an export backend.
var ErrNoBackend = errors.New("no export backend")

var registry = map[types.Framework]*Backend{
	types.FrameworkCypress:    &cypress,
	types.FrameworkPlaywright: &playwright,
	types.FrameworkPuppeteer:  &puppeteer,
	types.FrameworkDakka:      &dakka,
}

// For returns the backend registered for f.
func For(f types.Framework) (*Backend, error) {
	b, ok := registry[f]
	if !ok {
		return nil, fmt.Errorf("export %q: %w", f, ErrNoBackend)
	}
	return b, nil
}

// Compile compiles tl with the backend registered for f.
func Compile(f types.Framework, tl timeline.Timeline) (Artifact, error) {
	b, err := For(f)
	if err != nil {
		return Artifact{}, err
	}
	return b.Compile(tl), nil
}

// Frameworks lists the frameworks that have a backend, in enumeration order.
func Frameworks() []types.Framework {
	var out []types.Framework
	for _, f := range types.Frameworks() {
		if _, ok := registry[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ============================================
// Fold
// ============================================

// Compile folds tl into a script.
func (b *Backend) Compile(tl timeline.Timeline) Artifact {
	p := b.Program
	art := Artifact{Framework: b.Framework, FileName: b.FileName}
	steps := Flatten(tl)
	if len(steps) == 0 {
		art.Script = p.Empty
		return art
	}

	first := steps[0]
	body := p.Prelude(first.URL, first.Width, first.Height)
	if len(p.FrameVars) > 0 && needsFrame(steps) {
		body = append(body, p.FrameVars...)
	}

	// A leading redirect is the page load itself; anything else is also replayed.
	start := 0
	if first.Type == types.EventRedirect {
		start = 1
	}

	c := compilation{b: b}
	for i := start; i < len(steps); i++ {
		s := steps[i]
		nextRedirect := i+1 < len(steps) && steps[i+1].Type == types.EventRedirect
		body = append(body, c.step(i, s, nextRedirect)...)
	}
	art.Warnings = c.warnings

	var sb strings.Builder
	sb.WriteString(p.Header(c.assertions > 0))
	sb.WriteString(p.Open("Testing " + first.URL))
	for _, line := range body {
		sb.WriteString(p.Indent)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(p.Close)
	art.Script = sb.String()
	return art
}

type compilation struct {
	b          *Backend
	assertions int
	warnings   []string
}

func (c *compilation) warn(i int, format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf("step %d: ", i)+fmt.Sprintf(format, args...))
}

func (c *compilation) step(i int, s Step, nextRedirect bool) []string {
	p := c.b.Program
	var lines []string
	scope := p.Scope(s.InIframe)
	if s.InIframe && p.FrameInit != nil {
		lines = append(lines, p.FrameInit(p.Literal(c.b.Selectors.Frame(s.Frame, s.URL)))...)
	}

	switch s.Type {
	case types.EventAssertion:
		return append(lines, c.assertion(i, s, scope)...)
	case types.EventResize:
		return append(lines, p.Resize(s.Width, s.Height))
	}

	expr := c.action(i, s, scope)
	if expr == "" {
		return lines
	}
	if nextRedirect {
		return append(lines, p.WaitForNavigation(expr)...)
	}
	return append(lines, p.Statement(expr))
}

func (c *compilation) action(i int, s Step, scope string) string {
	p := c.b.Program
	lit := ""
	if s.Selector != nil {
		lit = p.Literal(c.b.Selectors.Resolve(*s.Selector, ""))
	}
	if pa, ok := c.b.PageActions[s.Type]; ok {
		return pa(scope, lit, s)
	}
	if s.Selector == nil {
		return ""
	}
	fn, ok := c.b.Actions[s.Type]
	if !ok {
		fn = c.b.Default
	}
	if fn == nil {
		c.warn(i, "no %s action for %q", c.b.Framework, s.Type)
		return ""
	}
	return fn(p.Locate(scope, lit, selector.FirstMatch(s.Selector, p.FirstMatch)), s)
}

func (c *compilation) assertion(i int, s Step, scope string) []string {
	p := c.b.Program
	fn, ok := c.b.Assertions[s.AssertionType]
	if !ok {
		c.warn(i, "no %s assertion for %q", c.b.Framework, s.AssertionType)
		return nil
	}
	a := Assertion{
		Scope:     scope,
		Value:     p.Literal(s.AssertionValue),
		RawValue:  s.AssertionValue,
		Attribute: p.Literal(s.AssertionAttribute),
	}
	if !s.AssertionType.PageScoped() {
		if s.Selector == nil {
			c.warn(i, "assertion %q has no element", s.AssertionType)
			return nil
		}
		a.Selector = p.Literal(c.b.Selectors.Resolve(*s.Selector, ""))
		a.First = selector.FirstMatch(s.Selector, p.FirstMatch)
		a.Locator = p.Locate(scope, a.Selector, a.First)
	}
	c.assertions++
	return []string{fn(a)}
}

// ============================================
// Steps
// ============================================

// Flatten expands a timeline into steps, group members in order.
func Flatten(tl timeline.Timeline) []Step {
	var out []Step
	for _, e := range tl {
		switch e.Kind() {
		case types.KindEvent:
			out = append(out, eventStep(*e.Event))
		case types.KindGroup:
			for _, m := range e.Group {
				out = append(out, eventStep(m))
			}
		case types.KindBlock:
			out = append(out, blockStep(*e.Block))
		}
	}
	return out
}

func eventStep(ev types.InteractionEvent) Step {
	return Step{
		Type:               ev.Type,
		Selector:           chosen(ev),
		Frame:              copySelector(ev.SelectedIframeSelector),
		InIframe:           ev.IsInIframe,
		URL:                ev.URL,
		Key:                ev.Key,
		Width:              ev.InnerWidth,
		Height:             ev.InnerHeight,
		AssertionType:      ev.AssertionType,
		AssertionValue:     ev.AssertionValue,
		AssertionAttribute: ev.AssertionAttribute,
	}
}

func blockStep(b types.EventBlock) Step {
	s := Step{
		Type:               b.Type,
		InIframe:           b.IsInIframe,
		AssertionType:      b.AssertionType,
		AssertionValue:     b.AssertionValue,
		AssertionAttribute: b.AssertionAttribute,
	}
	el := b.Element
	if el == nil {
		return s
	}
	s.Selector = chosen(*el)
	s.Frame = copySelector(el.SelectedIframeSelector)
	s.InIframe = s.InIframe || el.IsInIframe
	s.URL = el.URL
	s.Key = el.Key
	s.Width, s.Height = el.InnerWidth, el.InnerHeight
	if s.AssertionType == "" {
		s.AssertionType = el.AssertionType
		s.AssertionValue = el.AssertionValue
		s.AssertionAttribute = el.AssertionAttribute
	}
	return s
}

// chosen returns the user's selector choice, else the first candidate.
func chosen(ev types.InteractionEvent) *types.Selector {
	if ev.SelectedSelector != nil {
		return copySelector(ev.SelectedSelector)
	}
	if len(ev.ValidSelectors) > 0 {
		s := ev.ValidSelectors[0]
		return &s
	}
	return nil
}

func copySelector(s *types.Selector) *types.Selector {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func needsFrame(steps []Step) bool {
	for _, s := range steps {
		if s.InIframe {
			return true
		}
	}
	return false
}
