package network

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec names accepted in the ?codec= query parameter
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec encodes {type, payload} envelopes for one connection.
type Codec interface {
	Name() string
	// FrameType is the websocket message type used for every frame.
	FrameType() int
	Marshal(msgType string, payload interface{}) ([]byte, error)
	Unmarshal(data []byte) (*Envelope, error)
}

// Envelope is a decoded message whose payload is bound on demand.
type Envelope struct {
	Type    string
	payload []byte
	bind    func(data []byte, v interface{}) error
}

// Bind decodes the payload into v. A missing payload leaves v untouched.
func (e *Envelope) Bind(v interface{}) error {
	if isEmptyPayload(e.payload) {
		return nil
	}
	if err := e.bind(e.payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

func isEmptyPayload(p []byte) bool {
	switch {
	case len(p) == 0:
		return true
	case len(p) == 1 && p[0] == 0xc0: // msgpack nil
		return true
	case string(p) == "null":
		return true
	}
	return false
}

// CodecByName returns the codec for name; an empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return jsonCodec{}, nil
	case CodecMsgpack:
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return CodecJSON }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Marshal(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(&ServerMessage{Type: msgType, Payload: payload})
}

func (jsonCodec) Unmarshal(data []byte) (*Envelope, error) {
	var raw struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Envelope{Type: raw.Type, payload: raw.Payload, bind: json.Unmarshal}, nil
}

// msgpackCodec reuses the json struct tags so both codecs share field names.
type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return CodecMsgpack }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Marshal(msgType string, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(&ServerMessage{Type: msgType, Payload: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte) (*Envelope, error) {
	var raw struct {
		Type    string             `msgpack:"type"`
		Payload msgpack.RawMessage `msgpack:"payload"`
	}
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Envelope{Type: raw.Type, payload: raw.Payload, bind: msgpackBind}, nil
}

func msgpackBind(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
