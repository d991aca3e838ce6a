// Package focus moves keyboard focus between form controls inside a scope.
package focus

import (
	"github.com/matter2mqtt/pairui/pkg/dom"
)

// Focusable matches the elements that can take focus when a dialog opens.
const Focusable = "input, textarea, select, button"

// Candidates returns the focusable elements inside scope in document order.
// Disabled controls and hidden inputs are skipped.
func Candidates(scope *dom.Element) []*dom.Element {
	if scope == nil {
		return nil
	}
	var out []*dom.Element
	for _, el := range scope.QueryAll(Focusable) {
		if canReceiveFocus(el) {
			out = append(out, el)
		}
	}
	return out
}

// First returns the first focusable element inside scope, or nil.
func First(scope *dom.Element) *dom.Element {
	if c := Candidates(scope); len(c) > 0 {
		return c[0]
	}
	return nil
}

// RequestFirst focuses the first focusable element inside scope. It reports
// whether anything was focused.
func RequestFirst(scope *dom.Element) bool {
	el := First(scope)
	if el == nil {
		return false
	}
	el.Focus()
	return true
}

// Move shifts focus by delta among the candidates of scope, wrapping at
// either end. When focus is outside scope, the first candidate (or the last
// for a negative delta) is focused. It reports whether focus changed.
func Move(scope *dom.Element, delta int) bool {
	candidates := Candidates(scope)
	if len(candidates) == 0 || delta == 0 {
		return false
	}

	current := -1
	if active := scope.Document().ActiveElement(); active != nil {
		for i, el := range candidates {
			if el.Same(active) {
				current = i
				break
			}
		}
	}

	var next int
	switch {
	case current < 0 && delta > 0:
		next = 0
	case current < 0:
		next = len(candidates) - 1
	default:
		next = ((current+delta)%len(candidates) + len(candidates)) % len(candidates)
	}
	if next == current {
		return false
	}
	candidates[next].Focus()
	return true
}

func canReceiveFocus(el *dom.Element) bool {
	if el.Disabled() {
		return false
	}
	if el.Tag() == "input" {
		if t, _ := el.Attr("type"); t == "hidden" {
			return false
		}
	}
	return true
}
