package app

import (
	"github.com/matter2mqtt/pairui/pkg/api"
)

// Page names a top-level view.
type Page string

const (
	PageHome Page = "home"
	PagePair Page = "pair"
)

// Title returns the breadcrumb label of p.
func (p Page) Title() string {
	switch p {
	case PagePair:
		return "Pair Device"
	default:
		return "Devices"
	}
}

// FormState is the pair form as last submitted. Suggested marks a node id
// filled in from the device list rather than typed by the user.
type FormState struct {
	Code       string
	Name       string
	NodeID     uint64
	Suggested  bool
	Submitting bool
}

// suggestNodeID fills the form's node id with the next free id until the
// user submits one of their own.
func (a *App) suggestNodeID(devices []api.Device) {
	f := a.form.Value()
	if f.NodeID != 0 && !f.Suggested {
		return
	}
	next := api.NextNodeID(devices)
	if f.NodeID == next {
		return
	}
	f.NodeID = next
	f.Suggested = true
	a.form.Set(f)
}
