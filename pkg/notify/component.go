package notify

import (
	"sort"
	"strings"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/mount"
)

// CloseAction marks the close button of a notification.
const CloseAction = "close-notification"

var icons = map[Kind]string{
	Success: "&#10003;",
	Info:    "i",
	Warning: "!",
	Error:   "&#10005;",
}

// Renderer builds the notification list component. It remembers the ids it
// rendered last so that only new notifications carry the entering marker.
type Renderer struct {
	center *Center
	seen   map[string]bool
}

// NewRenderer creates a renderer whose close buttons remove through center.
func NewRenderer(center *Center) *Renderer {
	return &Renderer{center: center, seen: make(map[string]bool)}
}

// Component renders list newest first.
func (r *Renderer) Component(list []Notification) mount.Component {
	if len(list) == 0 {
		r.seen = make(map[string]bool)
		return mount.Text(`<div class="notifications-container"></div>`)
	}

	ordered := make([]Notification, len(list))
	for i, n := range list {
		ordered[len(list)-1-i] = n
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	var b strings.Builder
	b.WriteString(`<div class="notifications-container">`)
	next := make(map[string]bool, len(list))
	for _, n := range ordered {
		renderOne(&b, n, !r.seen[n.ID])
		next[n.ID] = true
	}
	b.WriteString(`</div>`)
	r.seen = next

	return mount.Component{
		Markup: b.String(),
		Bindings: []mount.Binding{
			mount.On(`[data-action="`+CloseAction+`"]`, "click", r.onClose),
		},
	}
}

func (r *Renderer) onClose(ev *dom.Event) effect.Effect {
	if el := ev.Target.Closest("[data-notification-id]"); el != nil {
		r.center.Remove(el.Data("notification-id"))
	}
	return effect.None
}

func renderOne(b *strings.Builder, n Notification, entering bool) {
	id := dom.Escape(n.ID)
	kind := dom.Escape(string(n.Kind))
	b.WriteString(`<div class="notification notification--` + kind)
	if entering {
		b.WriteString(` notification--entering`)
	}
	b.WriteString(`" data-notification-id="` + id + `">`)
	b.WriteString(`<div class="notification__content">`)
	icon, ok := icons[n.Kind]
	if !ok {
		icon = icons[Info]
	}
	b.WriteString(`<div class="notification__icon">` + icon + `</div>`)
	b.WriteString(`<div class="notification__message">` + dom.Escape(n.Message) + `</div>`)
	if !n.Kind.AutoDismiss() {
		b.WriteString(`<button class="notification__close" data-action="` + CloseAction +
			`" data-notification-id="` + id + `" aria-label="Close notification">&#215;</button>`)
	}
	b.WriteString(`</div></div>`)
}
