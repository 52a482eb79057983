// assertion.go — Assertion kinds a user can attach to the timeline.
package types

import "strings"

// AssertionType names one assertion check. Negated forms carry a "not" prefix.
type AssertionType string

const (
	AssertToHaveTitle     AssertionType = "toHaveTitle"
	AssertNotToHaveTitle  AssertionType = "notToHaveTitle"
	AssertToHaveURL       AssertionType = "toHaveURL"
	AssertNotToHaveURL    AssertionType = "notToHaveURL"
	AssertToBeChecked     AssertionType = "toBeChecked"
	AssertNotToBeChecked  AssertionType = "notToBeChecked"
	AssertContains        AssertionType = "contains"
	AssertNotContains     AssertionType = "notContains"
	AssertEquals          AssertionType = "equals"
	AssertNotEquals       AssertionType = "notEquals"
	AssertInDocument      AssertionType = "inDocument"
	AssertNotInDocument   AssertionType = "notInDocument"
	AssertToBeDisabled    AssertionType = "toBeDisabled"
	AssertNotToBeDisabled AssertionType = "notToBeDisabled"
	AssertToBeEnabled     AssertionType = "toBeEnabled"
	AssertNotToBeEnabled  AssertionType = "notToBeEnabled"
	AssertToBeHidden      AssertionType = "toBeHidden"
	AssertNotToBeHidden   AssertionType = "notToBeHidden"
	AssertToBeVisible     AssertionType = "toBeVisible"
	AssertNotToBeVisible  AssertionType = "notToBeVisible"
	AssertHasAttribute    AssertionType = "hasAttribute"
	AssertNotHasAttribute AssertionType = "notHasAttribute"
	AssertToHaveLength    AssertionType = "toHaveLength"
	AssertNotToHaveLength AssertionType = "notToHaveLength"
)

// PositiveAssertions lists the non-negated assertion types.
func PositiveAssertions() []AssertionType {
	return []AssertionType{
		AssertToHaveTitle,
		AssertToHaveURL,
		AssertToBeChecked,
		AssertContains,
		AssertEquals,
		AssertInDocument,
		AssertToBeDisabled,
		AssertToBeEnabled,
		AssertToBeHidden,
		AssertToBeVisible,
		AssertHasAttribute,
		AssertToHaveLength,
	}
}

// Negate returns the negated form of a positive assertion type.
func (a AssertionType) Negate() AssertionType {
	s := string(a)
	if s == "" {
		return a
	}
	return AssertionType("not" + strings.ToUpper(s[:1]) + s[1:])
}

// PageScoped reports whether the assertion targets the page rather than an element.
func (a AssertionType) PageScoped() bool {
	switch a {
	case AssertToHaveTitle, AssertNotToHaveTitle, AssertToHaveURL, AssertNotToHaveURL:
		return true
	}
	return false
}
