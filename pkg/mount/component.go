// Package mount installs component descriptions into document containers.
//
// A Component is a plain value built fresh on every render as a pure
// function of state: its markup, its delegated event bindings and its
// children. Engine.Mount replaces the container's content wholesale, binds
// the handlers through the shared event bus and mounts the children. Each
// mount produces a Token that owns every subscription and in-flight effect
// created for that container; mounting the same container again disposes the
// previous token first, so a container never carries two binding sets.
//
//	engine.Mount(app, mount.Component{
//	    Markup: `<button data-action="save">Save</button>`,
//	    Bindings: []mount.Binding{
//	        mount.On(`[data-action="save"]`, "click", func(ev *dom.Event) effect.Effect {
//	            return effect.Go(save)
//	        }),
//	    },
//	})
package mount

import (
	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
)

// Handler reacts to a delegated event and returns the effect to run.
// Returning effect.None is valid; returning nil breaks the contract and is
// logged and treated as a no-op.
type Handler func(ev *dom.Event) effect.Effect

// Binding wires a handler to events of one type whose target is, or is inside,
// an element matching Selector.
type Binding struct {
	Selector string
	Event    string
	Handler  Handler
}

// On builds a Binding.
func On(selector, eventType string, handler Handler) Binding {
	return Binding{Selector: selector, Event: eventType, Handler: handler}
}

// Key returns the "selector:event" identifier used in logs.
func (b Binding) Key() string {
	return b.Selector + ":" + b.Event
}

// Child is a component mounted into the first element matching Selector
// inside the parent's freshly rendered markup.
type Child struct {
	Selector  string
	Component Component
}

// Component describes one render of a subtree.
type Component struct {
	Markup   string
	Bindings []Binding
	Children []Child
}

// Text returns a component with markup only.
func Text(markup string) Component {
	return Component{Markup: markup}
}
