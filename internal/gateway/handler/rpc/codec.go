package rpc

import (
	"bytes"
	"encoding/json"
)

// jsonCodec replaces connect's protojson codec so the service can speak
// plain Go structs. It registers under the same "json" name, which keeps the
// application/json content type.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal leaves msg untouched for an empty body; request validation
// decides whether that is acceptable.
func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
