package adapter

import (
	"context"

	"github.com/vyrodovalexey/avembed/internal/encoding"
	"github.com/vyrodovalexey/avembed/internal/router"
	"github.com/vyrodovalexey/avembed/internal/util"
)

// TypedFunc is a handler over decoded request and response values.
type TypedFunc[T, R any] func(ctx context.Context, params *router.Params, req T) (R, error)

// Typed adapts a typed handler to the string handler contract stored in
// the route table. The request body is decoded into T with the codec
// before the handler runs and the returned R is encoded back into the
// response body. An empty request body leaves T at its zero value.
//
// The template string identifies the route in decode and encode errors;
// pass the same template used to register the route.
func Typed[T, R any](template string, codec encoding.Codec, fn TypedFunc[T, R]) router.Handler {
	return func(ctx context.Context, params *router.Params, body string) (string, error) {
		var req T
		if body != "" {
			if err := codec.Decode([]byte(body), &req); err != nil {
				return "", util.NewDecodeError(template, err)
			}
		}

		resp, err := fn(ctx, params, req)
		if err != nil {
			return "", err
		}

		encoded, err := codec.Encode(resp)
		if err != nil {
			return "", util.NewEncodeError(template, err)
		}
		return string(encoded), nil
	}
}

// RequestFunc is a handler that consumes a decoded request and writes
// its response body directly.
type RequestFunc[T any] func(ctx context.Context, params *router.Params, req T) (string, error)

// TypedRequest adapts a handler that wants a decoded request value but
// produces a raw response body.
func TypedRequest[T any](template string, codec encoding.Codec, fn RequestFunc[T]) router.Handler {
	return func(ctx context.Context, params *router.Params, body string) (string, error) {
		var req T
		if body != "" {
			if err := codec.Decode([]byte(body), &req); err != nil {
				return "", util.NewDecodeError(template, err)
			}
		}
		return fn(ctx, params, req)
	}
}

// ResponseFunc is a handler that reads the raw request body and returns
// a typed response value.
type ResponseFunc[R any] func(ctx context.Context, params *router.Params, body string) (R, error)

// TypedResponse adapts a handler that reads the raw body but wants its
// typed response value encoded.
func TypedResponse[R any](template string, codec encoding.Codec, fn ResponseFunc[R]) router.Handler {
	return func(ctx context.Context, params *router.Params, body string) (string, error) {
		resp, err := fn(ctx, params, body)
		if err != nil {
			return "", err
		}

		encoded, err := codec.Encode(resp)
		if err != nil {
			return "", util.NewEncodeError(template, err)
		}
		return string(encoded), nil
	}
}

// Raw passes the request body through untouched. It exists so raw and
// typed handlers register identically.
func Raw(fn router.Handler) router.Handler {
	return fn
}
