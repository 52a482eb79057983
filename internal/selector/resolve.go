// resolve.go — Canonical selector text for a chosen selector candidate.
// Candidates are supplied by the DOM observer; this package only picks the
// emitted form. Text candidates on interactive tags become tag-scoped text
// selectors, other text candidates become plain text matchers, every other
// kind is emitted verbatim.
package selector

import (
	"fmt"
	"strings"

	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

var interactiveTags = map[string]bool{
	"button":   true,
	"a":        true,
	"input":    true,
	"textarea": true,
	"select":   true,
}

// IsInteractiveTag reports whether tag is one of button, a, input, textarea, select.
func IsInteractiveTag(tag string) bool {
	return interactiveTags[strings.ToLower(tag)]
}

// Resolver renders text candidates in a backend's selector dialect.
// The zero value uses the Playwright dialect.
type Resolver struct {
	// HasText renders a text candidate scoped to an interactive tag.
	HasText func(tag, text string) string
	// Text renders a text candidate on any other element.
	Text func(text string) string
}

var quoted = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// QuoteText escapes s for use inside a double-quoted selector argument.
func QuoteText(s string) string {
	return quoted.Replace(s)
}

// Playwright is the default dialect: button:has-text("x") and text="x".
var Playwright = Resolver{
	HasText: func(tag, text string) string { return fmt.Sprintf(`%s:has-text("%s")`, tag, text) },
	Text:    func(text string) string { return fmt.Sprintf(`text="%s"`, text) },
}

// Resolve returns the selector string to emit for a candidate on an element with tag.
// An empty tag falls back to the candidate's TagName. Dialects receive the
// text already escaped by QuoteText.
func (r Resolver) Resolve(c types.Selector, tag string) string {
	if c.Name != types.SelectorText {
		return c.Value
	}
	if tag == "" {
		tag = c.TagName
	}
	hasText, text := r.HasText, r.Text
	if hasText == nil {
		hasText = Playwright.HasText
	}
	if text == nil {
		text = Playwright.Text
	}
	if IsInteractiveTag(tag) {
		return hasText(strings.ToLower(tag), QuoteText(c.Value))
	}
	return text(QuoteText(c.Value))
}

// Frame returns the selector addressing the iframe an element lives in.
// Without an explicit choice it falls back to iframe[src="<url>"].
func (r Resolver) Frame(explicit *types.Selector, url string) string {
	if explicit != nil {
		return r.Resolve(*explicit, "iframe")
	}
	return r.Resolve(DefaultFrame(url), "iframe")
}

// DefaultFrame builds the src-attribute candidate for a frame URL.
func DefaultFrame(url string) types.Selector {
	return types.Selector{
		Name:    types.SelectorSrc,
		TagName: "iframe",
		Value:   fmt.Sprintf(`iframe[src="%s"]`, QuoteText(url)),
	}
}

// Resolve renders a candidate with the default dialect.
func Resolve(c types.Selector, tag string) string {
	return Playwright.Resolve(c, tag)
}

// FirstMatch returns qualifier when the candidate is ambiguous, "" otherwise.
func FirstMatch(c *types.Selector, qualifier string) string {
	if c != nil && c.Ambiguous() {
		return qualifier
	}
	return ""
}
