package app

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/matter2mqtt/pairui/pkg/api"
	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/errors"
	"github.com/matter2mqtt/pairui/pkg/mount"
	"github.com/matter2mqtt/pairui/pkg/notify"
	"github.com/matter2mqtt/pairui/pkg/platform"
	"github.com/matter2mqtt/pairui/pkg/validation"
)

// PairSchema validates the pair form.
func PairSchema() validation.Schema {
	return validation.NewSchema(
		validation.Field("code", validation.Required("Pairing code is required")),
		validation.Field("name", validation.Required("Device name/topic is required")),
		validation.Field("node_id",
			validation.Required("Valid node ID is required"),
			validation.Integer("Node ID must be a whole number"),
			validation.Min(1, "Node ID must be at least 1"),
		),
	)
}

// PairRequest converts a checked payload into an API request.
func PairRequest(payload map[string]string) (api.PairRequest, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(payload["node_id"]), 10, 64)
	if err != nil {
		return api.PairRequest{}, &errors.ValidationError{Messages: []string{"Valid node ID is required"}}
	}
	return api.PairRequest{
		Code:   strings.TrimSpace(payload["code"]),
		Name:   strings.TrimSpace(payload["name"]),
		NodeID: id,
	}, nil
}

func pairPage(a *App, form FormState) mount.Component {
	return mount.Component{
		Markup: `<div class="container">` +
			`<div id="status-message" class="status-message"></div>` +
			`<div id="pair-form-container"></div>` +
			`</div>`,
		Children: []mount.Child{
			{Selector: "#pair-form-container", Component: pairFormComponent(a, form)},
		},
	}
}

func pairFormComponent(a *App, form FormState) mount.Component {
	disabled := ""
	label := "Pair Device"
	if form.Submitting {
		disabled = " disabled"
		label = "Pairing..."
	}
	nodeID := ""
	if form.NodeID != 0 {
		nodeID = strconv.FormatUint(form.NodeID, 10)
	}
	code, name := form.Code, form.Name
	if !form.Submitting {
		code = a.typed("code", code)
		name = a.typed("name", name)
		nodeID = a.typed("node_id", nodeID)
	}

	var b strings.Builder
	b.WriteString(`<div class="section"><h2>Enter Pairing Details</h2><form data-form="pair-form">`)
	b.WriteString(`<div class="form-group"><label for="code">Pairing Code *</label>`)
	b.WriteString(`<input type="text" id="code" name="code" placeholder="MT:Y.K9042C00KA0648G00" value="` +
		dom.Escape(code) + `" required` + disabled + `>`)
	b.WriteString(`<p class="help-text">Format: MT:Y.K9042C00KA0648G00 (from QR code or device label)</p></div>`)
	b.WriteString(`<div class="form-group"><label for="name">Device Name/Topic *</label>`)
	b.WriteString(`<input type="text" id="name" name="name" placeholder="motion/living-room" value="` +
		dom.Escape(name) + `" required` + disabled + `>`)
	b.WriteString(`<p class="help-text">This will be the MQTT topic prefix for the device</p></div>`)
	b.WriteString(`<div class="form-group"><label for="node_id">Node ID *</label>`)
	b.WriteString(`<input type="number" id="node_id" name="node_id" placeholder="1" min="1" value="` +
		dom.Escape(nodeID) + `" required` + disabled + `>`)
	b.WriteString(`<p class="help-text">Unique identifier for this device (1, 2, 3, etc.)</p></div>`)
	b.WriteString(`<button type="submit" class="primary" data-action="submit-form"` + disabled + `>` + label + `</button>`)
	b.WriteString(`</form></div>`)

	return mount.Component{
		Markup: b.String(),
		Bindings: []mount.Binding{
			mount.On(`[data-form="pair-form"]`, "submit", func(ev *dom.Event) effect.Effect {
				ev.PreventDefault()
				a.SubmitPair(submittedValues(ev))
				return effect.None
			}),
			mount.On(`[data-form="pair-form"]`, "input", func(ev *dom.Event) effect.Effect {
				a.keepTyped(ev)
				return effect.None
			}),
		},
	}
}

// keepTyped records what the user typed so a re-render of the form keeps it.
func (a *App) keepTyped(ev *dom.Event) {
	if ev.Values != nil {
		for k, v := range ev.Values {
			a.draft[k] = v
		}
		return
	}
	if name, ok := ev.Target.Attr("name"); ok {
		a.draft[name] = ev.Target.Value()
	}
}

func (a *App) typed(field, fallback string) string {
	if v, ok := a.draft[field]; ok {
		return v
	}
	return fallback
}

// submittedValues returns the values carried by ev, or reads the named
// controls of the submitted form.
func submittedValues(ev *dom.Event) map[string]string {
	if ev.Values != nil {
		return ev.Values
	}
	values := make(map[string]string)
	form := ev.Target.Closest("form")
	if form == nil {
		return values
	}
	for _, el := range form.QueryAll("input[name], select[name], textarea[name]") {
		name, _ := el.Attr("name")
		values[name] = el.Value()
	}
	return values
}

// SubmitPair validates values and, when they pass, pairs the device. Each
// validation failure becomes an error notification. A submission while one
// is in flight is ignored.
func (a *App) SubmitPair(values map[string]string) {
	if a.form.Value().Submitting {
		return
	}
	payload, err := PairSchema().Check(values)
	var req api.PairRequest
	if err == nil {
		req, err = PairRequest(payload)
	}
	if err != nil {
		var ve *errors.ValidationError
		if stderrors.As(err, &ve) {
			for _, msg := range ve.Messages {
				a.notices.Add(notify.Error, msg)
			}
			return
		}
		a.notices.Add(notify.Error, err.Error())
		return
	}
	a.Pair(req)
}

// Pair commissions the device described by req in the background. The form
// shows its submitting state until the call settles; a success returns home
// after the redirect delay.
func (a *App) Pair(req api.PairRequest) {
	clear(a.draft)
	a.form.Set(FormState{Code: req.Code, Name: req.Name, NodeID: req.NodeID, Submitting: true})
	a.notices.Infof("Commissioning device with chip-tool...")
	a.logger.Info("app.pair", "node", req.NodeID, "name", req.Name)

	a.background("pair", func(ctx context.Context) func() {
		resp, err := a.api.Pair(ctx, req)
		return func() {
			defer a.finishPair()
			switch {
			case err != nil:
				a.logger.Warn("app.pair.failed", "node", req.NodeID, "err", err)
				a.notices.Add(notify.Error, "Pairing failed: "+failureMessage(err))
			case resp.OK():
				msg := resp.Message
				if msg == "" {
					msg = "Device paired successfully!"
				}
				a.notices.Add(notify.Success, msg)
				a.logRegistry(resp)
				a.scheduleRedirect()
			default:
				msg := resp.Message
				if msg == "" {
					msg = "Failed to pair device"
				}
				a.notices.Add(notify.Error, msg)
			}
		}
	})
}

func (a *App) finishPair() {
	f := a.form.Value()
	f.Submitting = false
	a.form.Set(f)
}

func (a *App) logRegistry(resp *api.PairResponse) {
	reg, err := resp.Registry()
	if err != nil {
		a.logger.Warn("app.pair.registry", "err", err)
		return
	}
	for _, d := range reg.List() {
		a.logger.Info("app.pair.registered", "node", d.NodeID, "topic", d.Topic)
	}
}

// scheduleRedirect returns to the device list after the redirect delay with
// a fresh form and a reloaded list.
func (a *App) scheduleRedirect() {
	if a.redirect != nil {
		a.redirect.Stop()
	}
	a.redirect = a.clock.AfterFunc(a.redirectDelay, platform.OnLoop(a.loop, func() {
		if a.closed {
			return
		}
		a.redirect = nil
		clear(a.draft)
		a.form.Set(FormState{})
		a.Navigate(PageHome)
		a.LoadDevices()
	}))
}
