package testing

import (
	"fmt"
	"strings"

	"github.com/matter2mqtt/pairui/pkg/dom"
)

// Finder locates elements in the document.
type Finder interface {
	// Evaluate returns all matching elements under root in document order.
	Evaluate(root *dom.Element) []*dom.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*dom.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *dom.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *dom.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *dom.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []*dom.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// Texts returns the text content of every match.
func (r FinderResult) Texts() []string {
	out := make([]string, len(r.elements))
	for i, el := range r.elements {
		out[i] = el.Text()
	}
	return out
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// Find evaluates finder against the whole document.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{elements: finder.Evaluate(t.Doc.Root()), finder: finder}
}

// --- Concrete finders ---

type selectorFinder struct {
	selector string
}

func (f *selectorFinder) Evaluate(root *dom.Element) []*dom.Element {
	return root.QueryAll(f.selector)
}

func (f *selectorFinder) Description() string {
	return fmt.Sprintf("selector %q", f.selector)
}

// BySelector returns a finder that matches elements by CSS selector.
func BySelector(selector string) Finder {
	return &selectorFinder{selector: selector}
}

type textFinder struct {
	text     string
	contains bool
}

func (f *textFinder) Evaluate(root *dom.Element) []*dom.Element {
	var out []*dom.Element
	for _, el := range root.QueryAll("*") {
		if !isLeafText(el) {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if text == f.text || (f.contains && strings.Contains(text, f.text)) {
			out = append(out, el)
		}
	}
	return out
}

func (f *textFinder) Description() string {
	if f.contains {
		return fmt.Sprintf("text containing %q", f.text)
	}
	return fmt.Sprintf("text %q", f.text)
}

// isLeafText reports whether el has no element children, so text matches
// land on the innermost element rather than every ancestor.
func isLeafText(el *dom.Element) bool {
	return len(el.Children()) == 0
}

// ByText returns a finder that matches leaf elements whose trimmed text
// equals text.
func ByText(text string) Finder {
	return &textFinder{text: text}
}

// ByTextContaining returns a finder that matches leaf elements whose text
// contains substring.
func ByTextContaining(substring string) Finder {
	return &textFinder{text: substring, contains: true}
}

type predicateFinder struct {
	fn func(*dom.Element) bool
}

func (f *predicateFinder) Evaluate(root *dom.Element) []*dom.Element {
	var out []*dom.Element
	for _, el := range root.QueryAll("*") {
		if f.fn(el) {
			out = append(out, el)
		}
	}
	return out
}

func (f *predicateFinder) Description() string {
	return "predicate"
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(*dom.Element) bool) Finder {
	return &predicateFinder{fn: fn}
}
