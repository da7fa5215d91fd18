package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avembed/internal/bridge"
	"github.com/vyrodovalexey/avembed/internal/encoding"
	"github.com/vyrodovalexey/avembed/internal/observability"
	"github.com/vyrodovalexey/avembed/internal/router"
	"github.com/vyrodovalexey/avembed/internal/util"
)

// dispatch is the single entry point for application requests: parse,
// resolve against the route table, invoke, respond.
func (s *Server) dispatch(c *gin.Context) {
	start := time.Now()
	method := c.Request.Method
	path := c.Request.URL.Path

	if s.metrics != nil {
		s.metrics.IncrementActiveRequests(method)
		defer s.metrics.DecrementActiveRequests(method)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(c, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large", "request body exceeds the configured limit")
			s.finish(c, start, "", http.StatusRequestEntityTooLarge, 0)
			return
		}
		s.respondError(c, http.StatusBadRequest,
			"Bad Request", "failed to read request body")
		s.finish(c, start, "", http.StatusBadRequest, 0)
		return
	}

	res := s.table.Resolve(method, path, c.Request.URL.Query())

	switch res.Outcome {
	case router.OutcomeNotFound:
		s.logger.Debug("no route matched",
			observability.String("method", method),
			observability.String("path", path),
		)
		s.respondError(c, http.StatusNotFound,
			"Not Found", util.NewRouteNotFoundError(method, path).Error())
		s.finish(c, start, "", http.StatusNotFound, int64(len(body)))

	case router.OutcomeMethodNotAllowed:
		c.Header("Allow", strings.Join(res.Allowed, ", "))
		s.respondError(c, http.StatusMethodNotAllowed,
			"Method Not Allowed",
			util.NewMethodNotAllowedError(method, res.Route.Template(), res.Allowed).Error())
		s.finish(c, start, res.Route.Template(), http.StatusMethodNotAllowed, int64(len(body)))

	case router.OutcomeMatched:
		s.invokeMatched(c, res, string(body), start)

	default:
		s.respondError(c, http.StatusInternalServerError,
			"Internal Server Error", "unrecognized resolution outcome")
		s.finish(c, start, "", http.StatusInternalServerError, int64(len(body)))
	}
}

// invokeMatched runs a matched handler and writes its response.
func (s *Server) invokeMatched(c *gin.Context, res *router.Resolution, body string, start time.Time) {
	template := res.Route.Template()

	ctx := c.Request.Context()
	ctx = util.ContextWithRoute(ctx, template)
	ctx = util.ContextWithStartTime(ctx, start)

	response, err := s.invoke(ctx, res.Handler, res.Params, body)
	if err != nil {
		s.logger.Error("handler failed",
			observability.String("method", c.Request.Method),
			observability.String("route", template),
			observability.String("requestId", observability.RequestIDFromContext(ctx)),
			observability.Error(err),
		)
		s.respondError(c, http.StatusInternalServerError,
			"Internal Server Error", "handler execution failed")
		s.finish(c, start, template, http.StatusInternalServerError, int64(len(body)))
		return
	}

	c.Data(http.StatusOK, encoding.ContentTypeJSON, []byte(response))
	s.finish(c, start, template, http.StatusOK, int64(len(body)))
}

// invoke executes the handler, on the bridge when one is configured. An
// inline invocation contains its own panics so a faulty handler yields
// an error response instead of unwinding the serving goroutine.
func (s *Server) invoke(
	ctx context.Context,
	handler router.Handler,
	params *router.Params,
	body string,
) (response string, err error) {
	if s.exec != nil {
		return bridge.RunOn(ctx, s.exec, func() (string, error) {
			return handler(ctx, params, body)
		})
	}

	defer func() {
		if r := recover(); r != nil {
			err = util.NewHandlerError(util.RouteFromContext(ctx),
				errorFromPanic(r))
		}
	}()
	return handler(ctx, params, body)
}

func errorFromPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// respondError writes the uniform JSON error envelope.
func (s *Server) respondError(c *gin.Context, status int, title, message string) {
	c.JSON(status, gin.H{
		"error":   title,
		"message": message,
	})
}

// finish records the access log line and request metrics.
func (s *Server) finish(c *gin.Context, start time.Time, route string, status int, reqSize int64) {
	duration := time.Since(start)

	s.logger.Info("request completed",
		observability.String("method", c.Request.Method),
		observability.String("path", c.Request.URL.Path),
		observability.String("route", route),
		observability.Int("status", status),
		observability.Duration("duration", duration),
		observability.String("requestId",
			observability.RequestIDFromContext(c.Request.Context())),
	)

	if s.metrics != nil {
		s.metrics.RecordRequest(c.Request.Method, route, status, duration,
			reqSize, int64(c.Writer.Size()))
	}
}
