// playwright.go — Playwright test backend (@playwright/test).
package export

import (
	"fmt"

	"github.com/ozdemirkulaoglu/dakka/internal/selector"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

var playwright = Backend{
	Framework: types.FrameworkPlaywright,
	FileName:  "playwright.spec.js",
	Selectors: selector.Playwright,
	Actions: map[types.EventType]ActionFunc{
		types.EventMouseClick:  func(loc string, _ Step) string { return loc + ".click()" },
		types.EventDoubleClick: func(loc string, _ Step) string { return loc + ".dblclick()" },
		types.EventKeyboard:    func(loc string, s Step) string { return loc + ".fill(" + jsString(s.Key) + ")" },
	},
	PageActions: map[types.EventType]PageActionFunc{
		types.EventKeyDown: pwPress,
		types.EventKeyUp:   pwPress,
	},
	Default: func(loc string, _ Step) string { return loc },
	Assertions: map[types.AssertionType]AssertionFunc{
		types.AssertToHaveTitle:     pwPage("toHaveTitle"),
		types.AssertNotToHaveTitle:  pwPage("not.toHaveTitle"),
		types.AssertToHaveURL:       pwPage("toHaveURL"),
		types.AssertNotToHaveURL:    pwPage("not.toHaveURL"),
		types.AssertToBeChecked:     pwElement("toBeChecked", false),
		types.AssertNotToBeChecked:  pwElement("not.toBeChecked", false),
		types.AssertContains:        pwElement("toContainText", true),
		types.AssertNotContains:     pwElement("not.toContainText", true),
		types.AssertEquals:          pwElement("toHaveText", true),
		types.AssertNotEquals:       pwElement("not.toHaveText", true),
		types.AssertInDocument:      pwElement("toBeAttached", false),
		types.AssertNotInDocument:   pwElement("not.toBeAttached", false),
		types.AssertToBeDisabled:    pwElement("toBeDisabled", false),
		types.AssertNotToBeDisabled: pwElement("not.toBeDisabled", false),
		types.AssertToBeEnabled:     pwElement("toBeEnabled", false),
		types.AssertNotToBeEnabled:  pwElement("not.toBeEnabled", false),
		types.AssertToBeHidden:      pwElement("toBeHidden", false),
		types.AssertNotToBeHidden:   pwElement("not.toBeHidden", false),
		types.AssertToBeVisible:     pwElement("toBeVisible", false),
		types.AssertNotToBeVisible:  pwElement("not.toBeVisible", false),
		types.AssertHasAttribute:    pwAttribute("toHaveAttribute"),
		types.AssertNotHasAttribute: pwAttribute("not.toHaveAttribute"),
		types.AssertToHaveLength:    pwCount("toHaveCount"),
		types.AssertNotToHaveLength: pwCount("not.toHaveCount"),
	},
	Program: Program{
		Header: func(assertions bool) string {
			if assertions {
				return "const { test, expect } = require('@playwright/test')\n\n"
			}
			return "const { test } = require('@playwright/test')\n\n"
		},
		Open: func(name string) string {
			return fmt.Sprintf("test(%s, async ({ page }) => {\n", jsString(name))
		},
		Close:   "})\n",
		Indent:  "  ",
		Empty:   "// No events recorded\n",
		Literal: jsString,
		Prelude: func(url string, width, height int) []string {
			return []string{
				fmt.Sprintf("await page.setViewportSize({ width: %d, height: %d })", width, height),
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
		Scope:      jsScope,
		Locate:     func(scope, sel, first string) string { return scope + ".locator(" + sel + ")" + first },
		FirstMatch: ".first()",
		Statement:  func(expr string) string { return "await " + expr },
		WaitForNavigation: func(expr string) []string {
			return []string{
				"await Promise.all([",
				"  page.waitForNavigation(),",
				"  " + expr + ",",
				"])",
			}
		},
		Resize: func(width, height int) string {
			return fmt.Sprintf("await page.setViewportSize({ width: %d, height: %d })", width, height)
		},
	},
}

// jsScope is the handle name shared by the Playwright and Puppeteer programs.
func jsScope(inIframe bool) string {
	if inIframe {
		return "frame"
	}
	return "page"
}

func pwPress(_, _ string, s Step) string {
	if s.Key == "" {
		return ""
	}
	return "page.keyboard.press(" + jsString(s.Key) + ")"
}

// Title and URL checks always target the top-level page.
func pwPage(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("await expect(page).%s(%s)", matcher, a.Value)
	}
}

func pwElement(matcher string, withValue bool) AssertionFunc {
	return func(a Assertion) string {
		arg := ""
		if withValue {
			arg = a.Value
		}
		return fmt.Sprintf("await expect(%s).%s(%s)", a.Locator, matcher, arg)
	}
}

func pwAttribute(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("await expect(%s).%s(%s, %s)", a.Locator, matcher, a.Attribute, a.Value)
	}
}

func pwCount(matcher string) AssertionFunc {
	return func(a Assertion) string {
		return fmt.Sprintf("await expect(%s.locator(%s)).%s(%s)", a.Scope, a.Selector, matcher, countLiteral(a.RawValue, a.Value))
	}
}
