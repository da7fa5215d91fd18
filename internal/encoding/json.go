package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONOptions configures the JSON codec.
type JSONOptions struct {
	// PrettyPrint indents encoded output for readability.
	PrettyPrint bool
}

// jsonCodec implements Codec for JSON encoding.
type jsonCodec struct {
	opts *JSONOptions
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec(opts *JSONOptions) Codec {
	if opts == nil {
		opts = &JSONOptions{}
	}
	return &jsonCodec{opts: opts}
}

// Encode encodes the value to JSON bytes.
func (c *jsonCodec) Encode(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)

	if c.opts.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	// Remove trailing newline added by encoder
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// Decode decodes JSON bytes into the value.
func (c *jsonCodec) Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))

	// Use number type for better precision
	decoder.UseNumber()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	return nil
}

// ContentType returns the JSON content type.
func (c *jsonCodec) ContentType() string {
	return ContentTypeJSON
}

// MarshalJSON is a convenience function for JSON marshaling.
func MarshalJSON(v interface{}, pretty bool) ([]byte, error) {
	codec := NewJSONCodec(&JSONOptions{PrettyPrint: pretty})
	return codec.Encode(v)
}

// UnmarshalJSON is a convenience function for JSON unmarshaling.
func UnmarshalJSON(data []byte, v interface{}) error {
	codec := NewJSONCodec(nil)
	return codec.Decode(data, v)
}
