package dom

import (
	"golang.org/x/net/html"
)

// Event is a synthetic DOM event. Events bubble from Target to the document.
type Event struct {
	// Type is the event type, e.g. "click" or "keydown".
	Type string
	// Target is the element the event was dispatched at.
	Target *Element
	// Key is the key name for keyboard events, e.g. "Escape".
	Key string
	// Shift reports whether Shift was held for keyboard events.
	Shift bool
	// Values carries form values for submit and input events.
	Values map[string]string
	// Detail carries custom event payloads.
	Detail any

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the default action as cancelled.
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// StopPropagation stops the event from reaching further ancestors.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

type listener struct {
	fn      func(*Event)
	removed bool
}

// AddEventListener attaches fn for eventType on the element and returns a
// function that detaches it. The returned function is idempotent.
func (e *Element) AddEventListener(eventType string, fn func(*Event)) (remove func()) {
	d := e.doc
	byType := d.listeners[e.node]
	if byType == nil {
		byType = make(map[string][]*listener)
		d.listeners[e.node] = byType
	}
	l := &listener{fn: fn}
	byType[eventType] = append(byType[eventType], l)
	node := e.node
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		d.prune(node, eventType)
	}
}

func (d *Document) prune(node *html.Node, eventType string) {
	byType := d.listeners[node]
	if byType == nil {
		return
	}
	kept := byType[eventType][:0]
	for _, l := range byType[eventType] {
		if !l.removed {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(byType, eventType)
	} else {
		byType[eventType] = kept
	}
	if len(byType) == 0 {
		delete(d.listeners, node)
	}
}

// ListenerCount returns the number of listeners of eventType attached
// directly to el.
func (d *Document) ListenerCount(el *Element, eventType string) int {
	return len(d.listeners[el.node][eventType])
}

// Dispatch delivers ev to listeners on target and each of its ancestors, in
// that order. It reports whether the default action was left intact.
func (d *Document) Dispatch(target *Element, ev *Event) bool {
	ev.Target = target
	for n := target.node; n != nil && !ev.stopped; n = n.Parent {
		byType := d.listeners[n]
		if byType == nil {
			continue
		}
		// Snapshot so listeners added or removed during delivery do not
		// change this round.
		ls := append([]*listener(nil), byType[ev.Type]...)
		for _, l := range ls {
			if !l.removed {
				l.fn(ev)
			}
		}
	}
	return !ev.defaultPrevented
}

// Dispatch is shorthand for e.Document().Dispatch(e, ev).
func (e *Element) Dispatch(ev *Event) bool {
	return e.doc.Dispatch(e, ev)
}
