// Package dialog shows components inside native modal dialogs.
//
// A Manager owns every dialog it opens. Each dialog lives in a shell element
// appended to #dialog-container and is addressed by a caller-chosen id:
//
//	mgr := dialog.New(doc, engine, bus)
//	mgr.Init()
//	mgr.Show("confirm", confirmComponent)
//	...
//	mgr.Close("confirm")
//
// Clicking an element marked data-action="close" or data-action="cancel"
// inside a dialog closes it, as does a click on the dialog element itself
// (the backdrop). Escape closes the topmost open dialog.
package dialog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/events"
	"github.com/matter2mqtt/pairui/pkg/focus"
	"github.com/matter2mqtt/pairui/pkg/metrics"
	"github.com/matter2mqtt/pairui/pkg/mount"
)

const (
	// ContainerID is the id of the element dialog shells are appended to.
	ContainerID = "dialog-container"

	// OpenedEvent and ClosedEvent are dispatched on the document root with
	// a Lifecycle detail.
	OpenedEvent = "dialog-opened"
	ClosedEvent = "dialog-closed"

	shellSelector = `dialog[data-component="dialog"]`
	closeSelector = `[data-action="close"], [data-action="cancel"]`
)

// Phase is a dialog lifecycle transition.
type Phase int

const (
	// Opened is signalled after the dialog is shown and focused.
	Opened Phase = iota
	// Closed is signalled before the dialog is removed.
	Closed
)

func (p Phase) String() string {
	if p == Opened {
		return "opened"
	}
	return "closed"
}

// Lifecycle describes one open or close of a dialog.
type Lifecycle struct {
	ID     string
	Phase  Phase
	Dialog *dom.Element
}

// Manager tracks open dialogs by id. It must be used from the UI loop.
type Manager struct {
	doc     *dom.Document
	engine  *mount.Engine
	bus     *events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics

	once      sync.Once
	subs      []*events.Subscription
	dialogs   map[string]*dom.Element
	lifecycle *events.Broadcast[Lifecycle]
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records the number of open dialogs.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// New creates a manager for doc. Dialog content is mounted through engine
// and the close affordances listen on bus.
func New(doc *dom.Document, engine *mount.Engine, bus *events.Bus, opts ...Option) *Manager {
	m := &Manager{
		doc:       doc,
		engine:    engine,
		bus:       bus,
		logger:    slog.New(slog.DiscardHandler),
		dialogs:   make(map[string]*dom.Element),
		lifecycle: events.NewBroadcast[Lifecycle]("dialog.lifecycle"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init installs the click and keydown observers. Calling it again is a
// no-op.
func (m *Manager) Init() {
	m.once.Do(func() {
		m.subs = append(m.subs,
			m.bus.Get("click").Listen(m.onClick),
			m.bus.Get("keydown").Listen(m.onKeyDown),
		)
	})
}

// Stop removes the observers installed by Init and closes every dialog.
func (m *Manager) Stop() {
	for _, s := range m.subs {
		s.Cancel()
	}
	m.subs = nil
	for _, id := range m.OpenIDs() {
		m.Close(id)
	}
}

// Lifecycle returns the stream of open and close transitions.
func (m *Manager) Lifecycle() *events.Broadcast[Lifecycle] {
	return m.lifecycle
}

// Show opens a dialog with the given id and mounts c inside it. A dialog
// already registered under id is discarded first without a Closed signal.
func (m *Manager) Show(id string, c mount.Component) (*dom.Element, error) {
	if existing := m.dialogs[id]; existing != nil {
		m.discard(id, existing)
	}

	container, err := m.ensureContainer()
	if err != nil {
		return nil, err
	}
	shell := fmt.Sprintf(
		`<dialog data-component="dialog" data-dialog-id="%[1]s" class="dialog">`+
			`<form method="dialog" class="dialog-form"><div data-dialog-mount="%[1]s"></div></form>`+
			`</dialog>`,
		dom.Escape(id))
	if err := container.AppendHTML(shell); err != nil {
		return nil, fmt.Errorf("dialog %q: %w", id, err)
	}
	dlg := container.LastElementChild()
	m.dialogs[id] = dlg

	m.engine.Mount(dlg.Query("[data-dialog-mount]"), c)
	dlg.ShowModal()
	focus.RequestFirst(dlg)

	m.metrics.SetDialogsOpen(len(m.dialogs))
	m.logger.Debug("dialog.opened", "id", id)
	m.signal(Lifecycle{ID: id, Phase: Opened, Dialog: dlg})
	return dlg, nil
}

// Close closes and removes the dialog registered under id. Unknown ids are
// ignored.
func (m *Manager) Close(id string) {
	dlg := m.Get(id)
	if dlg == nil {
		return
	}
	m.signal(Lifecycle{ID: id, Phase: Closed, Dialog: dlg})
	dlg.CloseModal()
	m.discard(id, dlg)
	m.logger.Debug("dialog.closed", "id", id)
}

// Get returns the dialog registered under id, or nil.
func (m *Manager) Get(id string) *dom.Element {
	dlg := m.dialogs[id]
	if dlg == nil {
		return nil
	}
	if !dlg.IsConnected() {
		// Removed by a re-render of an ancestor.
		m.discard(id, dlg)
		return nil
	}
	return dlg
}

// IsOpen reports whether the dialog registered under id is presented.
func (m *Manager) IsOpen(id string) bool {
	dlg := m.Get(id)
	return dlg != nil && dlg.IsOpen()
}

// OpenIDs returns the ids of open dialogs in document order.
func (m *Manager) OpenIDs() []string {
	var ids []string
	for _, dlg := range m.openShells() {
		ids = append(ids, dlg.Data("dialog-id"))
	}
	return ids
}

func (m *Manager) openShells() []*dom.Element {
	container := m.doc.Root().Query("#" + ContainerID)
	if container == nil {
		return nil
	}
	return container.QueryAll(shellSelector + "[open]")
}

func (m *Manager) discard(id string, dlg *dom.Element) {
	if mp := dlg.Query("[data-dialog-mount]"); mp != nil {
		m.engine.Unmount(mp)
	}
	dlg.Remove()
	delete(m.dialogs, id)
	m.metrics.SetDialogsOpen(len(m.dialogs))
}

func (m *Manager) ensureContainer() (*dom.Element, error) {
	if c := m.doc.Root().Query("#" + ContainerID); c != nil {
		return c, nil
	}
	body := m.doc.Body()
	if body == nil {
		return nil, fmt.Errorf("dialog: document has no body")
	}
	if err := body.AppendHTML(`<div id="` + ContainerID + `"></div>`); err != nil {
		return nil, fmt.Errorf("dialog: create container: %w", err)
	}
	return body.LastElementChild(), nil
}

func (m *Manager) signal(l Lifecycle) {
	m.lifecycle.Emit(l)
	name := OpenedEvent
	if l.Phase == Closed {
		name = ClosedEvent
	}
	m.doc.Root().Dispatch(&dom.Event{Type: name, Detail: l})
}

func (m *Manager) onClick(ev *dom.Event) {
	target := ev.Target
	if target == nil {
		return
	}
	dlg := target.Closest(shellSelector)
	if dlg == nil {
		return
	}
	id := dlg.Data("dialog-id")
	if target.Same(dlg) {
		m.Close(id)
		return
	}
	if affordance := target.Closest(closeSelector); affordance != nil && dlg.Contains(affordance) {
		ev.PreventDefault()
		m.Close(id)
	}
}

// onKeyDown closes the topmost dialog on Escape and keeps Tab traversal
// inside it.
func (m *Manager) onKeyDown(ev *dom.Event) {
	if ev.Key != "Escape" && ev.Key != "Tab" {
		return
	}
	open := m.openShells()
	if len(open) == 0 {
		return
	}
	top := open[len(open)-1]
	ev.PreventDefault()
	if ev.Key == "Tab" {
		delta := 1
		if ev.Shift {
			delta = -1
		}
		focus.Move(top, delta)
		return
	}
	m.Close(top.Data("dialog-id"))
}
