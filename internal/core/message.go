package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dkeye/Cast/internal/domain"
)

type Kind string

const (
	KindHost             Kind = "host"
	KindHostAck          Kind = "host-ack"
	KindError            Kind = "error"
	KindJoin             Kind = "join"
	KindReconnect        Kind = "reconnect"
	KindHostConnected    Kind = "host-connected"
	KindHostDisconnected Kind = "host-disconnected"
	KindOffer            Kind = "offer"
	KindAnswer           Kind = "answer"
	KindCandidate        Kind = "candidate"
)

var (
	ErrMissingType = errors.New("missing type")
	ErrBadField    = errors.New("bad field")
)

// Message is one decoded inbound frame.
type Message interface {
	Kind() Kind
}

type HostRequest struct {
	Password string
}

type JoinRequest struct {
	ID domain.Identity
}

type ReconnectRequest struct {
	ID domain.Identity
}

// Negotiation is any non-control frame. The relay only looks at its
// type and routing id, the rest travels untouched.
type Negotiation struct {
	Type   Kind
	ID     domain.Identity
	Raw    Frame
	fields map[string]json.RawMessage
}

// Malformed is a frame that could not be decoded.
type Malformed struct {
	Err error
}

func (HostRequest) Kind() Kind      { return KindHost }
func (JoinRequest) Kind() Kind      { return KindJoin }
func (ReconnectRequest) Kind() Kind { return KindReconnect }
func (n Negotiation) Kind() Kind    { return n.Type }
func (Malformed) Kind() Kind        { return "" }

// Decode never fails: whatever cannot be understood comes back as Malformed.
func Decode(f Frame) Message {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(f, &fields); err != nil {
		return Malformed{Err: err}
	}
	rawType, ok := fields["type"]
	if !ok {
		return Malformed{Err: ErrMissingType}
	}
	var kind string
	if err := json.Unmarshal(rawType, &kind); err != nil || kind == "" {
		return Malformed{Err: fmt.Errorf("type: %w", ErrBadField)}
	}

	switch Kind(kind) {
	case KindHost:
		// A password that is not a string can never match the secret.
		pw, _, err := stringField(fields, "password")
		if err != nil {
			return HostRequest{}
		}
		return HostRequest{Password: pw}
	case KindJoin, KindReconnect:
		raw, _, err := stringField(fields, "id")
		if err != nil {
			return Malformed{Err: err}
		}
		id, err := domain.ParseIdentity(raw)
		if err != nil {
			return Malformed{Err: fmt.Errorf("%s id: %w", kind, err)}
		}
		if Kind(kind) == KindJoin {
			return JoinRequest{ID: id}
		}
		return ReconnectRequest{ID: id}
	default:
		n := Negotiation{Type: Kind(kind), Raw: f, fields: fields}
		// A non-string id cannot address anybody; routing treats it as absent.
		if raw, ok, err := stringField(fields, "id"); err == nil && ok {
			n.ID = domain.Identity(raw)
		}
		return n
	}
}

// stringField returns ok=false for an absent or null field.
func stringField(fields map[string]json.RawMessage, name string) (string, bool, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, fmt.Errorf("%s: %w", name, ErrBadField)
	}
	return s, true, nil
}

// WithID returns the frame with its id field replaced. Every other field
// keeps its original bytes; keys come out sorted.
func (n Negotiation) WithID(id domain.Identity) (Frame, error) {
	rawID, err := json.Marshal(string(id))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(n.fields)+1)
	for k := range n.fields {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	keys = append(keys, "id")
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		rawKey, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(rawKey)
		buf.WriteByte(':')
		if k == "id" {
			buf.Write(rawID)
		} else {
			buf.Write(n.fields[k])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Notice is every message the relay itself originates.
type Notice struct {
	Type    Kind            `json:"type"`
	ID      domain.Identity `json:"id,omitempty"`
	Message string          `json:"message,omitempty"`
}

func HostAck() Notice { return Notice{Type: KindHostAck} }

func ErrorNotice(msg string) Notice { return Notice{Type: KindError, Message: msg} }

func JoinNotice(id domain.Identity) Notice { return Notice{Type: KindJoin, ID: id} }

func HostConnected(id domain.Identity) Notice { return Notice{Type: KindHostConnected, ID: id} }

func HostDisconnected() Notice { return Notice{Type: KindHostDisconnected} }
