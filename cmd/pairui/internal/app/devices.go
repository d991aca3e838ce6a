package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/matter2mqtt/pairui/pkg/api"
	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/mount"
)

const closeIcon = `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="size-6">` +
	`<path stroke-linecap="round" stroke-linejoin="round" d="M6 18L18 6M6 6l12 12" /></svg>`

// UnpairDialogID is the dialog id used to confirm unpairing node.
func UnpairDialogID(node uint64) string {
	return fmt.Sprintf("unpair-device-%d", node)
}

func homePage(a *App, devices []api.Device) mount.Component {
	return mount.Component{
		Markup: `<div class="container">` +
			`<div id="status-message" class="status-message"></div>` +
			`<div id="actions-container"></div>` +
			`<div id="devices-container" class="loading">Loading devices...</div>` +
			`</div>`,
		Children: []mount.Child{
			{Selector: "#actions-container", Component: actionsComponent(a)},
			{Selector: "#devices-container", Component: deviceListComponent(a, devices)},
		},
	}
}

func actionsComponent(a *App) mount.Component {
	return mount.Component{
		Markup: `<div class="actions">` +
			`<button class="primary" data-action="pair">+ Pair New Device</button>` +
			`<button data-action="refresh">&#8635; Refresh</button>` +
			`</div>`,
		Bindings: []mount.Binding{
			mount.On(`[data-action="pair"]`, "click", navigateTo(a, PagePair)),
			mount.On(`[data-action="refresh"]`, "click", func(*dom.Event) effect.Effect {
				a.notices.Infof("Refreshing devices...")
				a.LoadDevices()
				return effect.None
			}),
		},
	}
}

func navigateTo(a *App, p Page) mount.Handler {
	return func(ev *dom.Event) effect.Effect {
		ev.PreventDefault()
		a.Navigate(p)
		return effect.None
	}
}

func deviceListComponent(a *App, devices []api.Device) mount.Component {
	if len(devices) == 0 {
		return mount.Component{
			Markup: `<div class="empty-state">` +
				`<h2>No Devices Yet</h2>` +
				`<p>Pair your first Matter device to get started</p>` +
				`<button data-action="pair" class="primary">+ Pair New Device</button>` +
				`</div>`,
			Bindings: []mount.Binding{
				mount.On(`[data-action="pair"]`, "click", navigateTo(a, PagePair)),
			},
		}
	}

	var b strings.Builder
	children := make([]mount.Child, 0, len(devices))
	b.WriteString(`<div class="devices-grid">`)
	for _, d := range devices {
		fmt.Fprintf(&b, `<div data-mount="device-%d"></div>`, d.NodeID)
		children = append(children, mount.Child{
			Selector:  fmt.Sprintf(`[data-mount="device-%d"]`, d.NodeID),
			Component: deviceComponent(a, d),
		})
	}
	b.WriteString(`</div>`)
	return mount.Component{Markup: b.String(), Children: children}
}

func deviceComponent(a *App, d api.Device) mount.Component {
	var b strings.Builder
	b.WriteString(`<div class="device-card"><div class="device-header">`)
	b.WriteString(`<div class="device-topic">` + dom.Escape(d.Topic) + `</div>`)
	fmt.Fprintf(&b, `<div class="device-node">Node %d</div>`, d.NodeID)
	b.WriteString(`</div><div class="device-details">`)
	if d.Sensitivity != "" {
		b.WriteString(`<div class="device-detail"><span class="detail-label">Sensitivity</span>`)
		b.WriteString(`<span class="detail-value">` + dom.Escape(d.Sensitivity) + `</span></div>`)
	}
	if d.DebounceMs != 0 {
		b.WriteString(`<div class="device-detail"><span class="detail-label">Debounce</span>`)
		fmt.Fprintf(&b, `<span class="detail-value">%dms</span></div>`, d.DebounceMs)
	}
	b.WriteString(`</div><div class="device-actions">`)
	b.WriteString(`<button data-action="edit">Edit</button>`)
	b.WriteString(`<button data-action="unpair" class="danger">Unpair</button>`)
	b.WriteString(`</div></div>`)

	return mount.Component{
		Markup: b.String(),
		Bindings: []mount.Binding{
			mount.On(`[data-action="edit"]`, "click", func(*dom.Event) effect.Effect {
				a.logger.Debug("app.device.edit", "node", d.NodeID, "topic", d.Topic)
				return effect.None
			}),
			mount.On(`[data-action="unpair"]`, "click", func(*dom.Event) effect.Effect {
				if _, err := a.dialogs.Show(UnpairDialogID(d.NodeID), unpairDialogComponent(a, d)); err != nil {
					a.logger.Error("app.dialog.show", "node", d.NodeID, "err", err)
				}
				return effect.None
			}),
		},
	}
}

func unpairDialogComponent(a *App, d api.Device) mount.Component {
	id := UnpairDialogID(d.NodeID)
	return mount.Component{
		Markup: `<div data-component="dialog-content">` +
			`<header class="dialog-header"><h3>Unpair Device</h3>` +
			`<button data-action="close" class="dialog-close" aria-label="Close">` + closeIcon + `</button></header>` +
			`<div class="dialog-body">` +
			`<p>Are you sure you want to unpair <strong>&#34;` + dom.Escape(d.Topic) + `&#34;</strong>?</p>` +
			`<p class="help-text">This will remove the device from devices.yaml and unpair it from the Matter fabric. ` +
			`You'll need to restart matter2mqtt for changes to take effect.</p>` +
			`</div>` +
			`<footer class="dialog-footer">` +
			`<button data-action="cancel" class="secondary">Cancel</button>` +
			`<button data-action="confirm-unpair" class="danger">Unpair Device</button>` +
			`</footer></div>`,
		Bindings: []mount.Binding{
			mount.On(`[data-action="confirm-unpair"]`, "click", func(*dom.Event) effect.Effect {
				a.dialogs.Close(id)
				a.Unpair(d)
				return effect.None
			}),
		},
	}
}

// Unpair removes d from the fabric and the registry in the background. On
// success the device leaves the list.
func (a *App) Unpair(d api.Device) {
	a.logger.Info("app.unpair", "node", d.NodeID, "topic", d.Topic)
	a.background("unpair", func(ctx context.Context) func() {
		resp, err := a.api.Unpair(ctx, api.UnpairRequest{NodeID: d.NodeID})
		return func() {
			switch {
			case err != nil:
				a.notices.ReportTransport("Unpairing device", err)
			case resp.OK():
				a.devices.Update(func(list []api.Device) []api.Device {
					out := make([]api.Device, 0, len(list))
					for _, x := range list {
						if x.NodeID != d.NodeID {
							out = append(out, x)
						}
					}
					return out
				})
				a.notices.Successf(`Device "%s" unpaired successfully. Restart matter2mqtt to apply changes.`, d.Topic)
			default:
				a.notices.Errorf("Failed to unpair device: %s", orUnknown(resp.Message))
			}
		}
	})
}

func orUnknown(msg string) string {
	if msg == "" {
		return "Unknown error"
	}
	return msg
}
