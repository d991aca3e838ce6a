package dom

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var selectorCache sync.Map // string -> cascadia.Matcher

// Compile parses a CSS selector, caching the result.
func Compile(selector string) (cascadia.Matcher, error) {
	if cached, ok := selectorCache.Load(selector); ok {
		return cached.(cascadia.Matcher), nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid selector %q: %w", selector, err)
	}
	selectorCache.Store(selector, sel)
	return sel, nil
}

// match reports whether n matches selector. Invalid selectors match nothing.
func match(n *html.Node, selector string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	sel, err := Compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(n)
}
