package reqrep

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// MaxMessageSize bounds a single encoded request or reply.
const MaxMessageSize = 1 << 20

type Encoder interface {
	Encode(v any) error
}

type Decoder interface {
	Decode(v any) error
}

// Codec produces encoders and decoders for one self-delimiting value per direction.
type Codec interface {
	Name() string
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

type jsonCodec struct{}

func (jsonCodec) Name() string                   { return "json" }
func (jsonCodec) NewEncoder(w io.Writer) Encoder { return json.NewEncoder(w) }
func (jsonCodec) NewDecoder(r io.Reader) Decoder {
	return json.NewDecoder(io.LimitReader(r, MaxMessageSize))
}

type cborCodec struct{}

func (cborCodec) Name() string                   { return "cbor" }
func (cborCodec) NewEncoder(w io.Writer) Encoder { return cbor.NewEncoder(w) }
func (cborCodec) NewDecoder(r io.Reader) Decoder {
	return cbor.NewDecoder(io.LimitReader(r, MaxMessageSize))
}

var (
	JSON Codec = jsonCodec{}
	CBOR Codec = cborCodec{}
)

// CodecByName returns the codec registered under name. An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", JSON.Name():
		return JSON, nil
	case CBOR.Name():
		return CBOR, nil
	default:
		return nil, fmt.Errorf("reqrep: unknown codec %q", name)
	}
}
