// puppeteer.go — Puppeteer script backend. Assertions use the standalone
// expect package.
package export

import (
	"fmt"
	"strings"

	"github.com/ozdemirkulaoglu/dakka/internal/selector"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

var ppSelectors = selector.Resolver{
	HasText: func(tag, text string) string { return fmt.Sprintf(`%s::-p-text("%s")`, tag, text) },
	Text:    func(text string) string { return fmt.Sprintf(`::-p-text("%s")`, text) },
}

var commentSafe = strings.NewReplacer("\n", " ", "\r", " ")

var puppeteer = Backend{
	Framework: types.FrameworkPuppeteer,
	FileName:  "puppeteer.spec.js",
	Selectors: ppSelectors,
	Actions: map[types.EventType]ActionFunc{
		types.EventMouseClick:  func(loc string, _ Step) string { return loc + ".click()" },
		types.EventDoubleClick: func(loc string, _ Step) string { return loc + ".click({ count: 2 })" },
		types.EventKeyboard:    func(loc string, s Step) string { return loc + ".fill(" + jsString(s.Key) + ")" },
	},
	PageActions: map[types.EventType]PageActionFunc{
		types.EventKeyDown: pwPress,
		types.EventKeyUp:   pwPress,
	},
	Default: func(loc string, _ Step) string { return loc + ".wait()" },
	Assertions: map[types.AssertionType]AssertionFunc{
		types.AssertToHaveTitle:     ppPage("await page.title()", "toBe"),
		types.AssertNotToHaveTitle:  ppPage("await page.title()", "not.toBe"),
		types.AssertToHaveURL:       ppPage("page.url()", "toBe"),
		types.AssertNotToHaveURL:    ppPage("page.url()", "not.toBe"),
		types.AssertToBeChecked:     ppEval("(el) => el.checked", "toBe", false),
		types.AssertNotToBeChecked:  ppEval("(el) => el.checked", "not.toBe", false),
		types.AssertContains:        ppEval("(el) => el.textContent", "toContain", true),
		types.AssertNotContains:     ppEval("(el) => el.textContent", "not.toContain", true),
		types.AssertEquals:          ppEval("(el) => el.textContent", "toBe", true),
		types.AssertNotEquals:       ppEval("(el) => el.textContent", "not.toBe", true),
		types.AssertInDocument:      ppPresence("not.toBeNull"),
		types.AssertNotInDocument:   ppPresence("toBeNull"),
		types.AssertToBeDisabled:    ppEval("(el) => el.disabled", "toBe", false),
		types.AssertNotToBeDisabled: ppEval("(el) => el.disabled", "not.toBe", false),
		types.AssertToBeEnabled:     ppEval("(el) => !el.disabled", "toBe", false),
		types.AssertNotToBeEnabled:  ppEval("(el) => !el.disabled", "not.toBe", false),
		types.AssertToBeHidden:      ppEval("(el) => el.offsetParent === null", "toBe", false),
		types.AssertNotToBeHidden:   ppEval("(el) => el.offsetParent === null", "not.toBe", false),
		types.AssertToBeVisible:     ppEval("(el) => el.offsetParent !== null", "toBe", false),
		types.AssertNotToBeVisible:  ppEval("(el) => el.offsetParent !== null", "not.toBe", false),
		types.AssertHasAttribute:    ppAttribute("toBe"),
		types.AssertNotHasAttribute: ppAttribute("not.toBe"),
		types.AssertToHaveLength:    ppCount("toBe"),
		types.AssertNotToHaveLength: ppCount("not.toBe"),
	},
	Program: Program{
		Header: func(assertions bool) string {
			h := "const puppeteer = require('puppeteer')\n"
			if assertions {
				h += "const expect = require('expect')\n"
			}
			return h + "\n"
		},
		Open: func(name string) string {
			return "// " + commentSafe.Replace(name) + "\n" +
				"(async () => {\n" +
				"  const browser = await puppeteer.launch()\n" +
				"  const page = await browser.newPage()\n"
		},
		Close:   "  await browser.close()\n})()\n",
		Indent:  "  ",
		Empty:   "// No events recorded\n",
		Literal: jsString,
		Prelude: func(url string, width, height int) []string {
			return []string{
				fmt.Sprintf("await page.setViewport({ width: %d, height: %d })", width, height),
				fmt.Sprintf("await page.goto(%s)", jsString(url)),
			}
		},
		FrameVars: []string{"let frameHandle = null", "let frame = null"},
		FrameInit: func(frameSel string) []string {
			return []string{
				fmt.Sprintf("frameHandle = await page.$(%s)", frameSel),
				"frame = await frameHandle.contentFrame()",
			}
		},
		Scope:     jsScope,
		Locate:    func(scope, sel, _ string) string { return scope + ".locator(" + sel + ")" },
		Statement: func(expr string) string { return "await " + expr },
		WaitForNavigation: func(expr string) []string {
			return []string{
				"await Promise.all([",
				"  page.waitForNavigation(),",
				"  " + expr + ",",
				"])",
			}
		},
		Resize: func(width, height int) string {
			return fmt.Sprintf("await page.setViewport({ width: %d, height: %d })", width, height)
		},
	},
}

func ppPage(subject, matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("expect(%s).%s(%s)", subject, matcher, a.Value)
	}
}

// ppEval compares a property read in the page against the assertion value,
// or against true when the check carries no value.
func ppEval(getter, matcher string, withValue bool) AssertionFunc {
	return func(a Assertion) string {
		want := "true"
		if withValue {
			want = a.Value
		}
		return fmt.Sprintf("expect(await %s.$eval(%s, %s)).%s(%s)", a.Scope, a.Selector, getter, matcher, want)
	}
}

func ppPresence(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("expect(await %s.$(%s)).%s()", a.Scope, a.Selector, matcher)
	}
}

func ppAttribute(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("expect(await %s.$eval(%s, (el, name) => el.getAttribute(name), %s)).%s(%s)",
			a.Scope, a.Selector, a.Attribute, matcher, a.Value)
	}
}

func ppCount(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("expect((await %s.$$(%s)).length).%s(%s)", a.Scope, a.Selector, matcher, countLiteral(a.RawValue, a.Value))
	}
}
