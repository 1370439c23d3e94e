package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/core/coretest"
	"github.com/dkeye/Cast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAssignHost(t *testing.T) {
	s := NewSession()
	assert.Nil(t, s.CurrentHost())

	h1, _ := coretest.NewPeer("h1")
	s.AssignHost(h1)
	assert.Same(t, h1, s.CurrentHost())
	assert.True(t, h1.Role().IsHost())

	h2, rec2 := coretest.NewPeer("h2")
	s.AssignHost(h2)
	assert.Same(t, h2, s.CurrentHost())
	assert.False(t, rec2.Closed())
}

func TestSessionRegisterViewerOverwrites(t *testing.T) {
	s := NewSession()
	old, oldRec := coretest.NewPeer("a")
	fresh, _ := coretest.NewPeer("b")

	s.RegisterViewer("v1", old)
	s.RegisterViewer("v1", fresh)

	assert.Same(t, fresh, s.LookupViewer("v1"))
	assert.Equal(t, domain.ViewerRole("v1"), fresh.Role())
	// The stale connection is left alone.
	assert.False(t, oldRec.Closed())
	assert.Equal(t, 1, s.Stats().Viewers)
}

func TestSessionViewerChangingIdentity(t *testing.T) {
	s := NewSession()
	p, _ := coretest.NewPeer("a")
	s.RegisterViewer("v1", p)
	s.RegisterViewer("v2", p)

	assert.Nil(t, s.LookupViewer("v1"))
	assert.Same(t, p, s.LookupViewer("v2"))
}

func TestSessionRemoveViewer(t *testing.T) {
	s := NewSession()
	p, _ := coretest.NewPeer("a")
	s.RegisterViewer("v1", p)
	s.RemoveViewer("v1")
	assert.Nil(t, s.LookupViewer("v1"))
	s.RemoveViewer("missing")
}

func TestSessionRemoveViewerIfOnlyMatchesOwner(t *testing.T) {
	s := NewSession()
	old, _ := coretest.NewPeer("a")
	fresh, _ := coretest.NewPeer("b")
	s.RegisterViewer("v1", old)
	s.RegisterViewer("v1", fresh)

	s.mu.Lock()
	removed := s.removeViewerIfLocked("v1", old)
	s.mu.Unlock()

	assert.False(t, removed)
	assert.Same(t, fresh, s.LookupViewer("v1"))
}

func TestSessionClearHostAndAllViewers(t *testing.T) {
	s := NewSession()
	h, _ := coretest.NewPeer("h")
	s.AssignHost(h)
	var want []*core.Peer
	for _, id := range []domain.Identity{"c", "a", "b"} {
		p, _ := coretest.NewPeer(string(id))
		s.RegisterViewer(id, p)
		want = append(want, p)
	}

	got := s.ClearHostAndAllViewers()
	require.Len(t, got, 3)
	assert.Equal(t, []*core.Peer{want[1], want[2], want[0]}, got)
	assert.Nil(t, s.CurrentHost())
	assert.Equal(t, SessionStats{}, s.Stats())
}

func TestSessionConcurrentAccessKeepsSingleHost(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			p, _ := coretest.NewPeer("h")
			s.AssignHost(p)
		}()
		go func(i int) {
			defer wg.Done()
			p, _ := coretest.NewPeer("v")
			id := domain.Identity(fmt.Sprintf("v%d", i%5))
			s.RegisterViewer(id, p)
			s.LookupViewer(id)
		}(i)
		go func() {
			defer wg.Done()
			if i%10 == 0 {
				s.ClearHostAndAllViewers()
			}
			s.CurrentHost()
		}()
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.viewers {
		assert.Equal(t, domain.ViewerRole(id), v.Role())
		assert.NotSame(t, s.host, v)
	}
}
