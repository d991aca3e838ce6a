package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle to an element node of a Document. Handles are cheap
// and may be created repeatedly for the same node; compare them with Same.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying html node. It is stable for the lifetime of
// the element and suitable as a map key.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Same reports whether both handles refer to the same node.
func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.node == other.node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return attr(e.node, "id")
}

// Attr returns the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Data returns the data-* attribute for key, e.g. Data("dialog-id").
func (e *Element) Data(key string) string {
	return attr(e.node, "data-"+key)
}

// Parent returns the nearest element ancestor, or nil.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrap(p)
		}
	}
	return nil
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// LastElementChild returns the last element child, or nil.
func (e *Element) LastElementChild() *Element {
	for c := e.node.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// IsConnected reports whether the element is attached to its document.
func (e *Element) IsConnected() bool {
	return e.doc.connected(e.node)
}

// Query returns the first descendant matching selector, or nil.
func (e *Element) Query(selector string) *Element {
	sel, err := Compile(selector)
	if err != nil {
		return nil
	}
	var found *html.Node
	walk(e.node, func(n *html.Node) bool {
		if sel.Match(n) {
			found = n
			return false
		}
		return true
	})
	return e.doc.wrap(found)
}

// QueryAll returns every descendant matching selector.
func (e *Element) QueryAll(selector string) []*Element {
	sel, err := Compile(selector)
	if err != nil {
		return nil
	}
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if sel.Match(n) {
			out = append(out, e.doc.wrap(n))
		}
		return true
	})
	return out
}

// Matches reports whether the element itself matches selector.
func (e *Element) Matches(selector string) bool {
	return match(e.node, selector)
}

// Closest returns the element or its nearest ancestor matching selector.
func (e *Element) Closest(selector string) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if match(n, selector) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Contains reports whether other is this element or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// SetInnerHTML replaces the element's entire content with markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("dom: parse fragment for <%s>: %w", e.node.Data, err)
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.detach(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// AppendHTML parses markup and appends the result after the last child.
func (e *Element) AppendHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("dom: parse fragment for <%s>: %w", e.node.Data, err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// OuterHTML renders the element including its own tag.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return sb.String()
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	e.detach(e.node)
}

func (e *Element) detach(n *html.Node) {
	if a := e.doc.active; a != nil {
		for p := a; p != nil; p = p.Parent {
			if p == n {
				e.doc.active = nil
				break
			}
		}
	}
	n.Parent.RemoveChild(n)
}

// ShowModal presents a dialog element modally.
func (e *Element) ShowModal() {
	e.SetAttr("open", "")
	e.SetAttr("aria-modal", "true")
}

// CloseModal ends modal presentation.
func (e *Element) CloseModal() {
	e.RemoveAttr("open")
	e.RemoveAttr("aria-modal")
}

// IsOpen reports whether the dialog element is presented.
func (e *Element) IsOpen() bool {
	return e.HasAttr("open")
}

// Focus makes the element the document's active element.
func (e *Element) Focus() {
	e.doc.active = e.node
}

// Disabled reports whether the element carries the disabled attribute.
func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// Value returns the current value of a form control: the text of a
// textarea, the selected option of a select, and the value attribute
// otherwise.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		opt := e.Query("option[selected]")
		if opt == nil {
			opt = e.Query("option")
		}
		if opt == nil {
			return ""
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	}
	return attr(e.node, "value")
}
