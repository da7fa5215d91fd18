package encoding

import (
	"errors"

	"github.com/vyrodovalexey/avembed/internal/observability"
)

// Content type constants.
const (
	ContentTypeJSON = "application/json"
)

// Common encoding errors.
var (
	// ErrUnsupportedContentType indicates that the content type is not supported.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrEncodingFailed indicates that encoding failed.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed indicates that decoding failed.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrNilValue indicates that the value to encode is nil.
	ErrNilValue = errors.New("nil value")
)

// Encoder encodes data to bytes.
type Encoder interface {
	// Encode encodes the value to bytes.
	Encode(v interface{}) ([]byte, error)

	// ContentType returns the content type for this encoder.
	ContentType() string
}

// Decoder decodes bytes to data.
type Decoder interface {
	// Decode decodes the data into the value.
	Decode(data []byte, v interface{}) error
}

// Codec combines Encoder and Decoder.
type Codec interface {
	Encoder
	Decoder
}

// CodecFactory creates codecs based on content type.
type CodecFactory interface {
	// GetCodec returns a codec for the given content type.
	GetCodec(contentType string) (Codec, error)

	// SupportedTypes returns the list of supported content types.
	SupportedTypes() []string
}

// codecFactory implements CodecFactory.
type codecFactory struct {
	logger observability.Logger
	codecs map[string]Codec
}

// NewCodecFactory creates a new CodecFactory with default codecs.
func NewCodecFactory(logger observability.Logger) CodecFactory {
	if logger == nil {
		logger = observability.NopLogger()
	}

	factory := &codecFactory{
		logger: logger,
		codecs: make(map[string]Codec),
	}

	jsonCodec := NewJSONCodec(nil)
	factory.codecs[ContentTypeJSON] = jsonCodec
	factory.codecs["text/json"] = jsonCodec

	return factory
}

// GetCodec returns a codec for the given content type.
func (f *codecFactory) GetCodec(contentType string) (Codec, error) {
	// Normalize content type (remove parameters)
	ct := normalizeContentType(contentType)

	codec, exists := f.codecs[ct]
	if !exists {
		f.logger.Debug("unsupported content type",
			observability.String("contentType", contentType))
		return nil, ErrUnsupportedContentType
	}

	return codec, nil
}

// SupportedTypes returns the list of supported content types.
func (f *codecFactory) SupportedTypes() []string {
	types := make([]string, 0, len(f.codecs))
	seen := make(map[string]bool)

	for ct := range f.codecs {
		normalized := normalizeContentType(ct)
		if !seen[normalized] {
			types = append(types, normalized)
			seen[normalized] = true
		}
	}

	return types
}

// normalizeContentType normalizes a content type by removing parameters.
func normalizeContentType(contentType string) string {
	for i, c := range contentType {
		if c == ';' {
			return contentType[:i]
		}
	}
	return contentType
}
