// framework.go — Closed enumeration of export backends.
package types

import (
	"fmt"
	"strings"
)

// Framework selects an export backend.
type Framework string

const (
	FrameworkNone       Framework = "none"
	FrameworkCypress    Framework = "cypress"
	FrameworkPlaywright Framework = "playwright"
	FrameworkPuppeteer  Framework = "puppeteer"
	FrameworkDakka      Framework = "dakka"
)

// Frameworks lists every identifier, including none.
func Frameworks() []Framework {
	return []Framework{FrameworkNone, FrameworkCypress, FrameworkPlaywright, FrameworkPuppeteer, FrameworkDakka}
}

// ParseFramework resolves a case-insensitive identifier.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Frameworks() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown framework %q", s)
}
