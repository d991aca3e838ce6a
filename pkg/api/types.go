package api

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// StatusSuccess is the status value of a successful response body.
const StatusSuccess = "success"

// Device is one entry of the device list.
type Device struct {
	NodeID      uint64 `json:"node_id"`
	Topic       string `json:"topic"`
	Sensitivity string `json:"sensitivity,omitempty"`
	DebounceMs  int    `json:"debounce_ms,omitempty"`
}

// DevicesResponse is the body of GET /api/devices.
type DevicesResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Devices []Device `json:"devices"`
}

// PairRequest is the body of POST /api/pair.
type PairRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	NodeID uint64 `json:"node_id"`
}

// PairResponse is the body returned by POST /api/pair. YAML, when present,
// is a devices.yaml snippet for the new device.
type PairResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	YAML    string `json:"yaml,omitempty"`
}

// OK reports whether the server accepted the pairing.
func (r *PairResponse) OK() bool {
	return r.Status == StatusSuccess
}

// Registry decodes the YAML snippet. It returns an empty registry when the
// response carries none.
func (r *PairResponse) Registry() (*Registry, error) {
	reg := &Registry{Devices: make(map[uint64]DeviceConfig)}
	if r.YAML == "" {
		return reg, nil
	}
	if err := yaml.Unmarshal([]byte(r.YAML), reg); err != nil {
		return nil, fmt.Errorf("api: decode registry snippet: %w", err)
	}
	if reg.Devices == nil {
		reg.Devices = make(map[uint64]DeviceConfig)
	}
	return reg, nil
}

// UnpairRequest is the body of POST /api/unpair.
type UnpairRequest struct {
	NodeID uint64 `json:"node_id"`
}

// Response is the generic status body.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the server reported success.
func (r *Response) OK() bool {
	return r.Status == StatusSuccess
}

// Registry mirrors the devices.yaml layout.
type Registry struct {
	Devices map[uint64]DeviceConfig `yaml:"devices"`
}

// DeviceConfig is one devices.yaml entry.
type DeviceConfig struct {
	Topic       string `yaml:"topic"`
	Sensitivity string `yaml:"sensitivity,omitempty"`
	DebounceMs  int    `yaml:"debounce_ms,omitempty"`
}

// List returns the registry entries as devices ordered by node id.
func (r *Registry) List() []Device {
	out := make([]Device, 0, len(r.Devices))
	for id, cfg := range r.Devices {
		out = append(out, Device{NodeID: id, Topic: cfg.Topic, Sensitivity: cfg.Sensitivity, DebounceMs: cfg.DebounceMs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// Marshal renders the registry as devices.yaml.
func (r *Registry) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// NextNodeID suggests the node id for a new device: one more than the
// largest id in use.
func NextNodeID(devices []Device) uint64 {
	var max uint64
	for _, d := range devices {
		if d.NodeID > max {
			max = d.NodeID
		}
	}
	return max + 1
}
