// cypress.go — Cypress spec backend.
package export

import (
	"fmt"
	"strings"

	"github.com/ozdemirkulaoglu/dakka/internal/selector"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// cySelectors renders text candidates with jQuery :contains. Plain text
// matches the innermost element only, not every ancestor.
var cySelectors = selector.Resolver{
	HasText: func(tag, text string) string { return fmt.Sprintf(`%s:contains("%s")`, tag, text) },
	Text: func(text string) string {
		return fmt.Sprintf(`*:contains("%s"):not(:has(:contains("%s")))`, text, text)
	},
}

var cypress = Backend{
	Framework: types.FrameworkCypress,
	FileName:  "cypress.cy.js",
	Selectors: cySelectors,
	Actions: map[types.EventType]ActionFunc{
		types.EventMouseClick:  func(loc string, _ Step) string { return loc + ".click()" },
		types.EventDoubleClick: func(loc string, _ Step) string { return loc + ".dblclick()" },
		types.EventKeyboard: func(loc string, s Step) string {
			return loc + ".clear().type(" + jsString(s.Key) + ", { parseSpecialCharSequences: false })"
		},
	},
	PageActions: map[types.EventType]PageActionFunc{
		types.EventKeyDown: cyPress,
		types.EventKeyUp:   cyPress,
	},
	Default: func(loc string, _ Step) string { return loc + ".should('exist')" },
	Assertions: map[types.AssertionType]AssertionFunc{
		types.AssertToHaveTitle:     cyPage("cy.title()", "eq"),
		types.AssertNotToHaveTitle:  cyPage("cy.title()", "not.eq"),
		types.AssertToHaveURL:       cyPage("cy.url()", "eq"),
		types.AssertNotToHaveURL:    cyPage("cy.url()", "not.eq"),
		types.AssertToBeChecked:     cyElement("be.checked", false),
		types.AssertNotToBeChecked:  cyElement("not.be.checked", false),
		types.AssertContains:        cyElement("contain", true),
		types.AssertNotContains:     cyElement("not.contain", true),
		types.AssertEquals:          cyElement("have.text", true),
		types.AssertNotEquals:       cyElement("not.have.text", true),
		types.AssertInDocument:      cyElement("exist", false),
		types.AssertNotInDocument:   cyElement("not.exist", false),
		types.AssertToBeDisabled:    cyElement("be.disabled", false),
		types.AssertNotToBeDisabled: cyElement("not.be.disabled", false),
		types.AssertToBeEnabled:     cyElement("be.enabled", false),
		types.AssertNotToBeEnabled:  cyElement("not.be.enabled", false),
		types.AssertToBeHidden:      cyElement("be.hidden", false),
		types.AssertNotToBeHidden:   cyElement("not.be.hidden", false),
		types.AssertToBeVisible:     cyElement("be.visible", false),
		types.AssertNotToBeVisible:  cyElement("not.be.visible", false),
		types.AssertHasAttribute:    cyAttribute("have.attr"),
		types.AssertNotHasAttribute: cyAttribute("not.have.attr"),
		types.AssertToHaveLength:    cyCount("have.length"),
		types.AssertNotToHaveLength: cyCount("not.have.length"),
	},
	Program: Program{
		Header: func(bool) string { return "/// <reference types=\"cypress\" />\n\n" },
		Open: func(name string) string {
			return fmt.Sprintf("it(%s, () => {\n", jsString(name))
		},
		Close:   "})\n",
		Indent:  "  ",
		Empty:   "// No events recorded\n",
		Literal: jsString,
		Prelude: func(url string, width, height int) []string {
			return []string{
				fmt.Sprintf("cy.viewport(%d, %d)", width, height),
				fmt.Sprintf("cy.visit(%s)", jsString(url)),
			}
		},
		FrameInit: func(frameSel string) []string {
			return []string{
				fmt.Sprintf("cy.get(%s).its('0.contentDocument.body').should('not.be.empty').then(cy.wrap).as('frame')", frameSel),
			}
		},
		Scope: func(inIframe bool) string {
			if inIframe {
				return "cy.get('@frame')"
			}
			return "cy"
		},
		Locate:     cyLocate,
		FirstMatch: ".first()",
		Statement:  func(expr string) string { return expr },
		WaitForNavigation: func(expr string) []string {
			return []string{
				"cy.url().then((url) => {",
				"  " + expr,
				"  cy.url().should('not.eq', url)",
				"})",
			}
		},
		Resize: func(width, height int) string {
			return fmt.Sprintf("cy.viewport(%d, %d)", width, height)
		},
	},
}

func cyLocate(scope, sel, first string) string {
	if scope == "cy" {
		return "cy.get(" + sel + ")" + first
	}
	return scope + ".find(" + sel + ")" + first
}

var cyKeys = map[string]string{
	"Enter":      "{enter}",
	"Escape":     "{esc}",
	"Backspace":  "{backspace}",
	"Delete":     "{del}",
	"ArrowUp":    "{uparrow}",
	"ArrowDown":  "{downarrow}",
	"ArrowLeft":  "{leftarrow}",
	"ArrowRight": "{rightarrow}",
	"Home":       "{home}",
	"End":        "{end}",
	"PageUp":     "{pageup}",
	"PageDown":   "{pagedown}",
	"Insert":     "{insert}",
	"{":          "{{}",
}

// cyKey maps a DOM key name to a cy.type sequence.
func cyKey(key string) string {
	if seq, ok := cyKeys[key]; ok {
		return seq
	}
	if len([]rune(key)) == 1 {
		return key
	}
	return "{" + strings.ToLower(key) + "}"
}

func cyPress(_, _ string, s Step) string {
	if s.Key == "" {
		return ""
	}
	return "cy.get('body').type(" + jsString(cyKey(s.Key)) + ")"
}

func cyPage(subject, chainer string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("%s.should('%s', %s)", subject, chainer, a.Value)
	}
}

func cyElement(chainer string, withValue bool) AssertionFunc {
	return func(a Assertion) string {
		if withValue {
			return fmt.Sprintf("%s.should('%s', %s)", a.Locator, chainer, a.Value)
		}
		return fmt.Sprintf("%s.should('%s')", a.Locator, chainer)
	}
}

func cyAttribute(chainer string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("%s.should('%s', %s, %s)", a.Locator, chainer, a.Attribute, a.Value)
	}
}

func cyCount(chainer string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("%s.should('%s', %s)", cyLocate(a.Scope, a.Selector, ""), chainer, countLiteral(a.RawValue, a.Value))
	}
}
