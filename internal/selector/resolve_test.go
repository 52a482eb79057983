package selector

import (
	"testing"

	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    types.Selector
		tag  string
		want string
	}{
		{"text on button", types.Selector{Name: types.SelectorText, Value: "Save"}, "button", `button:has-text("Save")`},
		{"text on anchor uppercase tag", types.Selector{Name: types.SelectorText, Value: "Home"}, "A", `a:has-text("Home")`},
		{"text on div", types.Selector{Name: types.SelectorText, Value: "Hello"}, "div", `text="Hello"`},
		{"text falls back to candidate tag", types.Selector{Name: types.SelectorText, Value: "Go", TagName: "input"}, "", `input:has-text("Go")`},
		{"id is literal", types.Selector{Name: types.SelectorID, Value: "#submit"}, "button", "#submit"},
		{"aria-label is literal", types.Selector{Name: types.SelectorAriaLabel, Value: `[aria-label="Close"]`}, "button", `[aria-label="Close"]`},
		{"quotes in button text", types.Selector{Name: types.SelectorText, Value: `Say "hi"`}, "button", `button:has-text("Say \"hi\"")`},
		{"backslash in plain text", types.Selector{Name: types.SelectorText, Value: `C:\dir "x"`}, "span", `text="C:\\dir \"x\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Resolve(tt.c, tt.tag); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverDialect(t *testing.T) {
	t.Parallel()

	r := Resolver{
		HasText: func(tag, text string) string { return tag + ":contains(\"" + text + "\")" },
		Text:    func(text string) string { return ":contains(\"" + text + "\")" },
	}
	got := r.Resolve(types.Selector{Name: types.SelectorText, Value: "OK"}, "button")
	if got != `button:contains("OK")` {
		t.Errorf("Resolve() = %q", got)
	}

	// Partial dialects fall back to the default renderer.
	partial := Resolver{Text: r.Text}
	got = partial.Resolve(types.Selector{Name: types.SelectorText, Value: "OK"}, "select")
	if got != `select:has-text("OK")` {
		t.Errorf("partial Resolve() = %q", got)
	}
}

func TestFrame(t *testing.T) {
	t.Parallel()

	if got := Playwright.Frame(nil, "https://pay.example.com/widget"); got != `iframe[src="https://pay.example.com/widget"]` {
		t.Errorf("Frame(nil) = %q", got)
	}
	if got := Playwright.Frame(nil, `https://x.test/?q="a"`); got != `iframe[src="https://x.test/?q=\"a\""]` {
		t.Errorf("Frame(nil) with quotes = %q", got)
	}
	explicit := &types.Selector{Name: types.SelectorID, Value: "#checkout"}
	if got := Playwright.Frame(explicit, "ignored"); got != "#checkout" {
		t.Errorf("Frame(explicit) = %q", got)
	}
}

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	if got := FirstMatch(&types.Selector{Length: 3}, ".first()"); got != ".first()" {
		t.Errorf("ambiguous candidate: got %q", got)
	}
	if got := FirstMatch(&types.Selector{Length: 1}, ".first()"); got != "" {
		t.Errorf("unique candidate: got %q", got)
	}
	if got := FirstMatch(nil, ".first()"); got != "" {
		t.Errorf("nil candidate: got %q", got)
	}
}
