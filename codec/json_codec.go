package codec

import (
	"encoding/json"
	"unicode/utf8"
)

// JSONCodec uses Go's standard library encoding/json for serialization.
// Every sitter function speaks UTF-8 JSON, so Decode rejects anything else
// before parsing.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return json.Unmarshal(data, v)
}
