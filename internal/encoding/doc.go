// Package encoding provides the serializer collaborator used by the
// handler adapter: Encoder/Decoder/Codec interfaces, a JSON codec, and
// a content-type keyed factory.
package encoding
