package rtc

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
)

func TestICEServersSkipsInvalid(t *testing.T) {
	got := ICEServers([]string{
		"stun:stun.l.google.com:19302",
		"http://example.com",
		"turn:turn.example.com:3478?transport=udp",
		"",
	})
	assert.Equal(t, []webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"turn:turn.example.com:3478?transport=udp"}},
	}, got)
}

func TestICEServersEmpty(t *testing.T) {
	assert.Empty(t, ICEServers(nil))
	assert.Len(t, DefaultICEServers(), 1)
}
