package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/hub/pkg/cryptox"
)

// Codec converts collection values to and from their stored bytes.
//
// Base64Codec and JSONCodec are reversible formats and provide no secrecy.
// Only SealedCodec offers confidentiality at rest; none of them take part in
// authentication.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Encoding names accepted by NewCodec.
const (
	EncodingJSON   = "json"
	EncodingBase64 = "base64"
	EncodingSealed = "sealed"
)

// NewCodec returns the codec named by encoding. sealer is only used, and
// required, for EncodingSealed.
func NewCodec(encoding string, sealer *cryptox.Sealer) (Codec, error) {
	switch encoding {
	case EncodingJSON:
		return JSONCodec{}, nil
	case "", EncodingBase64:
		return Base64Codec{}, nil
	case EncodingSealed:
		if sealer == nil {
			return nil, fmt.Errorf("store: %s encoding needs a master key", EncodingSealed)
		}
		return SealedCodec{Sealer: sealer}, nil
	default:
		return nil, fmt.Errorf("store: unknown encoding %q", encoding)
	}
}

// JSONCodec stores plain JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

// Base64Codec stores base64 of the JSON form.
type Base64Codec struct{}

func (Base64Codec) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (Base64Codec) Decode(data []byte, v any) error {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(raw, data)
	if err != nil {
		return fmt.Errorf("base64: %w", err)
	}
	return json.Unmarshal(raw[:n], v)
}

// SealedCodec stores the JSON form sealed with XChaCha20-Poly1305.
type SealedCodec struct {
	Sealer *cryptox.Sealer
}

func (c SealedCodec) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.Sealer.Seal(raw)
}

func (c SealedCodec) Decode(data []byte, v any) error {
	raw, err := c.Sealer.Open(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
