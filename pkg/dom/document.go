package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

const blankDocument = `<!DOCTYPE html><html><head></head><body></body></html>`

// Document is an HTML document tree with event listeners and focus state.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]*listener
	active    *html.Node
}

// NewDocument returns an empty document with a head and a body.
func NewDocument() *Document {
	doc, err := Parse(blankDocument)
	if err != nil {
		// The blank document is a constant; failing to parse it is a bug.
		panic(fmt.Sprintf("dom: parse blank document: %v", err))
	}
	return doc
}

// Parse builds a document from full page markup.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]*listener),
	}, nil
}

// Root returns an element handle for the document node itself. Listeners
// attached to it see every bubbling event.
func (d *Document) Root() *Element {
	return d.wrap(d.root)
}

// Body returns the body element.
func (d *Document) Body() *Element {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	return d.wrap(body)
}

// Select returns the first element matching selector, or a SelectionError.
func (d *Document) Select(selector string) (*Element, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if sel.Match(n) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, &errors.SelectionError{Selector: selector}
	}
	return d.wrap(found), nil
}

// SelectAll returns every element matching selector, or a SelectionError
// when there are none.
func (d *Document) SelectAll(selector string) ([]*Element, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	var out []*Element
	walk(d.root, func(n *html.Node) bool {
		if sel.Match(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	if len(out) == 0 {
		return nil, &errors.SelectionError{Selector: selector}
	}
	return out, nil
}

// SelectByID returns the element with the given id attribute.
func (d *Document) SelectByID(id string) (*Element, error) {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, &errors.SelectionError{Selector: "#" + id}
	}
	return d.wrap(found), nil
}

// MustSelect is like Select but panics when the anchor cannot be resolved.
// Use it only for anchors whose absence is a programming error.
func (d *Document) MustSelect(selector string) *Element {
	el, err := d.Select(selector)
	if err != nil {
		panic(err)
	}
	return el
}

// ActiveElement returns the focused element, or nil when focus is unset or
// the focused element has been detached.
func (d *Document) ActiveElement() *Element {
	if d.active == nil || !d.connected(d.active) {
		return nil
	}
	return d.wrap(d.active)
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) connected(n *html.Node) bool {
	for n.Parent != nil {
		n = n.Parent
	}
	return n == d.root
}

// walk visits element descendants of n in document order. It stops when fn
// returns false and reports whether the walk ran to completion.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !fn(c) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Escape escapes text for safe interpolation into markup.
func Escape(text string) string {
	return html.EscapeString(text)
}
