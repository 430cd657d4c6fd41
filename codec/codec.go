// Package codec turns the sitter's wire shapes into bytes and back.
package codec

import "errors"

// ErrInvalidUTF8 is returned by Decode when the payload is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}
