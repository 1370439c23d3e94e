package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/core/coretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func negotiation(t *testing.T, raw string) core.Negotiation {
	t.Helper()
	m := core.Decode(core.Frame(raw))
	n, ok := m.(core.Negotiation)
	require.True(t, ok, "not a negotiation frame: %s", raw)
	return n
}

func TestRouterHostToViewer(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, _ := coretest.NewPeer("h")
	v1, rec1 := coretest.NewPeer("v1")
	v2, rec2 := coretest.NewPeer("v2")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)
	s.RegisterViewer("v2", v2)

	raw := `{"type":"candidate","id":"v1","candidate":{"candidate":"candidate:1 1 udp 2122260223 10.0.0.1 5000 typ host","sdpMid":"0"}}`
	rt.Route(h, negotiation(t, raw))

	require.Len(t, rec1.Frames(), 1)
	assert.Equal(t, raw, string(rec1.Frames()[0]))
	assert.Empty(t, rec2.Frames())
}

func TestRouterHostToUnknownViewerIsDropped(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, hrec := coretest.NewPeer("h")
	v1, rec1 := coretest.NewPeer("v1")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)

	rt.Route(h, negotiation(t, `{"type":"offer","id":"v2","offer":{}}`))
	rt.Route(h, negotiation(t, `{"type":"offer","offer":{}}`))

	assert.Empty(t, rec1.Frames())
	assert.Empty(t, hrec.Frames())
}

func TestRouterViewerToHost(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, hrec := coretest.NewPeer("h")
	v1, _ := coretest.NewPeer("v1")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)

	raw := `{"type":"answer","answer":{"type":"answer","sdp":"v=0"},"id":"v1"}`
	rt.Route(v1, negotiation(t, raw))

	require.Len(t, hrec.Frames(), 1)
	assert.Equal(t, raw, string(hrec.Frames()[0]))
}

func TestRouterStampsViewerIdentity(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, hrec := coretest.NewPeer("h")
	v1, _ := coretest.NewPeer("v1")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)

	rt.Route(v1, negotiation(t, `{"type":"answer","answer":{"sdp":"v=0"},"id":"v2"}`))

	require.Len(t, hrec.Frames(), 1)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(hrec.Frames()[0], &got))
	assert.Equal(t, `"v1"`, string(got["id"]))
	assert.Equal(t, `{"sdp":"v=0"}`, string(got["answer"]))
}

func TestRouterUnassignedSenderReachesHostVerbatim(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, hrec := coretest.NewPeer("h")
	anon, _ := coretest.NewPeer("anon")
	s.AssignHost(h)

	raw := `{"type":"candidate","candidate":{}}`
	rt.Route(anon, negotiation(t, raw))
	require.Len(t, hrec.Frames(), 1)
	assert.Equal(t, raw, string(hrec.Frames()[0]))
}

func TestRouterViewerWithoutHostIsDropped(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	v1, rec1 := coretest.NewPeer("v1")
	v2, rec2 := coretest.NewPeer("v2")
	s.RegisterViewer("v1", v1)
	s.RegisterViewer("v2", v2)

	rt.Route(v1, negotiation(t, `{"type":"candidate","id":"v2","candidate":{}}`))

	assert.Empty(t, rec1.Frames())
	assert.Empty(t, rec2.Frames())
}

func TestRouterViewerNeverReachesViewer(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, hrec := coretest.NewPeer("h")
	v1, _ := coretest.NewPeer("v1")
	v2, rec2 := coretest.NewPeer("v2")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)
	s.RegisterViewer("v2", v2)

	rt.Route(v1, negotiation(t, `{"type":"offer","id":"v2","offer":{}}`))

	assert.Empty(t, rec2.Frames())
	assert.Len(t, hrec.Frames(), 1)
}

func TestRouterSupersededHostIsDropped(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	old, _ := coretest.NewPeer("old")
	fresh, _ := coretest.NewPeer("new")
	v1, rec1 := coretest.NewPeer("v1")
	s.AssignHost(old)
	s.AssignHost(fresh)
	s.RegisterViewer("v1", v1)

	rt.Route(old, negotiation(t, `{"type":"offer","id":"v1","offer":{}}`))
	assert.Empty(t, rec1.Frames())

	rt.Route(fresh, negotiation(t, `{"type":"offer","id":"v1","offer":{}}`))
	assert.Len(t, rec1.Frames(), 1)
}

func TestRouterSendToClosedViewerDoesNotPanic(t *testing.T) {
	s := NewSession()
	rt := NewRouter(s)
	h, _ := coretest.NewPeer("h")
	v1, rec1 := coretest.NewPeer("v1")
	s.AssignHost(h)
	s.RegisterViewer("v1", v1)
	rec1.Close()

	assert.NotPanics(t, func() {
		rt.Route(h, negotiation(t, `{"type":"offer","id":"v1","offer":{}}`))
	})
	assert.Empty(t, rec1.Frames())
}
