package rtc

import (
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ICEServers turns configured STUN/TURN URLs into the list handed to
// browsers. Entries that do not parse are skipped.
func ICEServers(urls []string) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(urls))
	for _, raw := range urls {
		uri, err := stun.ParseURI(raw)
		if err != nil {
			log.Warn().Err(err).Str("module", "webrtc").Str("url", raw).Msg("skip ice server")
			continue
		}
		out = append(out, webrtc.ICEServer{URLs: []string{uri.String()}})
	}
	return out
}

// DefaultICEServers is used when nothing valid is configured.
func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}
