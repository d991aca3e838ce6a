package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestDevices(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/devices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","devices":[{"node_id":2,"topic":"motion/hall","debounce_ms":250},{"node_id":7,"topic":"door"}]}`))
	})

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	require.Equal(t, Device{NodeID: 2, Topic: "motion/hall", DebounceMs: 250}, devices[0])
	require.Equal(t, uint64(8), NextNodeID(devices))
}

func TestDevices_EmptyList(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	})

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	require.NotNil(t, devices)
	require.Empty(t, devices)
	require.Equal(t, uint64(1), NextNodeID(devices))
}

func TestPair_SendsBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req PairRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, PairRequest{Code: "MT:ABC", Name: "motion/room", NodeID: 3}, req)
		w.Write([]byte(`{"status":"success","message":"Device 3 commissioned","yaml":"devices:\n  3:\n    topic: motion/room\n"}`))
	})

	resp, err := c.Pair(context.Background(), PairRequest{Code: "MT:ABC", Name: "motion/room", NodeID: 3})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "Device 3 commissioned", resp.Message)

	reg, err := resp.Registry()
	require.NoError(t, err)
	require.Equal(t, []Device{{NodeID: 3, Topic: "motion/room"}}, reg.List())
}

func TestPair_HTTPErrorCarriesStatus(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"Device not found. Make sure the device is powered on and in pairing mode."}`))
	})

	_, err := c.Pair(context.Background(), PairRequest{Code: "x", Name: "y", NodeID: 1})
	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 500, te.Status)
	require.Equal(t, "pair()", te.Op)
	require.Equal(t, "HTTP 500 Internal Server Error", te.Message)
	require.EqualError(t, te.Err, "Device not found. Make sure the device is powered on and in pairing mode.")
	require.Equal(t, "pair() failed: HTTP 500 Internal Server Error", err.Error())
}

func TestPair_NonSuccessStatusBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"already commissioned"}`))
	})

	resp, err := c.Pair(context.Background(), PairRequest{})
	require.NoError(t, err)
	require.False(t, resp.OK())
}

func TestUnpair(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/unpair", r.URL.Path)
		var req UnpairRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.NodeID == 404 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"error","message":"Device 404 not found in devices.yaml"}`))
			return
		}
		w.Write([]byte(`{"status":"success","message":"Device 5 unpaired"}`))
	})

	resp, err := c.Unpair(context.Background(), UnpairRequest{NodeID: 5})
	require.NoError(t, err)
	require.True(t, resp.OK())

	_, err = c.Unpair(context.Background(), UnpairRequest{NodeID: 404})
	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusNotFound, te.Status)
	require.Equal(t, "unpair(404)", te.Op)
}

func TestInvalidJSON(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.Devices(context.Background())
	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusOK, te.Status)
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Devices(context.Background())
	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	require.Zero(t, te.Status)
	require.NotEmpty(t, te.Message)
}

func TestCancellationIsNotATransportError(t *testing.T) {
	release := make(chan struct{})
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Devices(ctx)
	require.True(t, stderrors.Is(err, context.DeadlineExceeded), "err = %v", err)
	var te *errors.TransportError
	require.False(t, stderrors.As(err, &te))
}

func TestRegistry_Empty(t *testing.T) {
	reg, err := (&PairResponse{}).Registry()
	require.NoError(t, err)
	require.Empty(t, reg.List())

	_, err = (&PairResponse{YAML: "devices: [unterminated"}).Registry()
	require.Error(t, err)
}
