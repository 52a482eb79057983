// dakka.go — dakka scenario backend.
// Emits a YAML document with one flow mapping per step:
//
//	version: 1
//	name: "Testing https://example.com"
//	steps:
//	  - viewport: {width: 800, height: 600}
//	  - goto: {url: "https://example.com"}
//	  - click: {selector: "#submit"}
//	  - assert: {type: toHaveTitle, value: "Done"}
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ozdemirkulaoglu/dakka/internal/selector"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

var dakka = Backend{
	Framework: types.FrameworkDakka,
	FileName:  "dakka.yaml",
	Selectors: selector.Playwright,
	Actions: map[types.EventType]ActionFunc{
		types.EventMouseClick:  func(loc string, _ Step) string { return "click: {" + loc + "}" },
		types.EventDoubleClick: func(loc string, _ Step) string { return "dblclick: {" + loc + "}" },
		types.EventKeyboard: func(loc string, s Step) string {
			return "fill: {" + loc + ", value: " + yamlString(s.Key) + "}"
		},
	},
	PageActions: map[types.EventType]PageActionFunc{
		types.EventKeyDown: dakkaPress,
		types.EventKeyUp:   dakkaPress,
	},
	Default:    func(loc string, _ Step) string { return "wait: {" + loc + "}" },
	Assertions: dakkaAssertions(),
	Program: Program{
		Header: func(bool) string { return "version: 1\n" },
		Open: func(name string) string {
			return "name: " + yamlString(name) + "\nsteps:\n"
		},
		Indent:  "  ",
		Empty:   "# No events recorded\n",
		Literal: yamlString,
		Prelude: func(url string, width, height int) []string {
			return []string{
				fmt.Sprintf("- viewport: {width: %d, height: %d}", width, height),
				"- goto: {url: " + yamlString(url) + "}",
			}
		},
		FrameInit: func(frameSel string) []string {
			return []string{"- frame: {selector: " + frameSel + "}"}
		},
		Scope: func(inIframe bool) string {
			if inIframe {
				return "frame"
			}
			return "page"
		},
		Locate: func(scope, sel, first string) string {
			loc := "selector: " + sel
			if first != "" {
				loc += ", first: true"
			}
			if scope == "frame" {
				loc += ", frame: true"
			}
			return loc
		},
		FirstMatch: "first",
		Statement:  func(expr string) string { return "- " + expr },
		WaitForNavigation: func(expr string) []string {
			return []string{"- waitForNavigation:", "    " + expr}
		},
		Resize: func(width, height int) string {
			return fmt.Sprintf("- viewport: {width: %d, height: %d}", width, height)
		},
	},
}

// yamlString renders s as a double-quoted YAML scalar. YAML double-quoted
// scalars accept every JSON string escape.
func yamlString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func dakkaPress(_, _ string, s Step) string {
	if s.Key == "" {
		return ""
	}
	return "press: {key: " + yamlString(s.Key) + "}"
}

func dakkaAssertions() map[types.AssertionType]AssertionFunc {
	out := make(map[types.AssertionType]AssertionFunc)
	for _, t := range types.PositiveAssertions() {
		out[t] = dakkaAssert(t)
		out[t.Negate()] = dakkaAssert(t.Negate())
	}
	return out
}

func dakkaAssert(t types.AssertionType) AssertionFunc {
	withAttribute := t == types.AssertHasAttribute || t == types.AssertNotHasAttribute
	return func(a Assertion) string {
		fields := []string{"type: " + string(t)}
		if a.Locator != "" {
			fields = append(fields, a.Locator)
		}
		if withAttribute {
			fields = append(fields, "attribute: "+a.Attribute)
		}
		if a.RawValue != "" {
			fields = append(fields, "value: "+a.Value)
		}
		return "- assert: {" + strings.Join(fields, ", ") + "}"
	}
}
