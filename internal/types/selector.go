// selector.go — Selector candidates proposed by the DOM observer.
package types

// Selector kinds proposed by the DOM observer.
const (
	SelectorText      = "text"
	SelectorAriaLabel = "aria-label"
	SelectorID        = "id"
	SelectorTestID    = "data-testid"
	SelectorCSS       = "css"
	SelectorSrc       = "src"
)

// Selector is a candidate way to address an element.
// Length is the number of elements the candidate matched when it was proposed.
type Selector struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	AriaLabel string `json:"ariaLabel,omitempty"`
	TagName   string `json:"tagName,omitempty"`
	Length    int    `json:"length,omitempty"`
}

// Ambiguous reports whether the candidate matched more than one element.
func (s Selector) Ambiguous() bool {
	return s.Length > 1
}
