package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avembed/internal/util"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "root", in: "/", want: "/"},
		{name: "empty", in: "", want: "/"},
		{name: "trailing slash stripped", in: "/items/42/", want: "/items/42"},
		{name: "no trailing slash unchanged", in: "/items/42", want: "/items/42"},
		{name: "missing leading slash", in: "items/42", want: "/items/42"},
		{name: "repeated slashes collapsed", in: "//items///42//", want: "/items/42"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePath(tt.in))
		})
	}
}

func TestCompileTemplate(t *testing.T) {
	t.Parallel()

	t.Run("literal template", func(t *testing.T) {
		t.Parallel()

		ct, err := CompileTemplate("/healthz")
		require.NoError(t, err)
		assert.Equal(t, "/healthz", ct.Template())
		assert.False(t, ct.HasParams())
	})

	t.Run("placeholder template", func(t *testing.T) {
		t.Parallel()

		ct, err := CompileTemplate("/users/{id}/orders/{order_id}")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "order_id"}, ct.ParamNames())
		assert.True(t, ct.HasParams())
	})

	t.Run("trailing slash normalized", func(t *testing.T) {
		t.Parallel()

		ct, err := CompileTemplate("/items/{id}/")
		require.NoError(t, err)
		assert.Equal(t, "/items/{id}", ct.Template())
	})

	t.Run("root template", func(t *testing.T) {
		t.Parallel()

		ct, err := CompileTemplate("/")
		require.NoError(t, err)
		assert.Equal(t, "/", ct.Template())
	})

	tests := []struct {
		name     string
		template string
	}{
		{name: "unclosed brace", template: "/items/{id"},
		{name: "nested braces", template: "/items/{{id}}"},
		{name: "empty placeholder", template: "/items/{}"},
		{name: "partial segment placeholder", template: "/items/x{id}"},
		{name: "invalid identifier", template: "/items/{1id}"},
		{name: "duplicate placeholder name", template: "/a/{id}/b/{id}"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := CompileTemplate(tt.template)
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrInvalidTemplate))

			var terr *util.TemplateError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.template, terr.Template)
		})
	}
}

func TestCompiledTemplateMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		template   string
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{
			name:       "literal exact",
			template:   "/users/list",
			path:       "/users/list",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:      "literal mismatch",
			template:  "/users/list",
			path:      "/users/show",
			wantMatch: false,
		},
		{
			name:       "single parameter",
			template:   "/items/{id}",
			path:       "/items/42",
			wantMatch:  true,
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:       "trailing slash on request path",
			template:   "/items/{id}",
			path:       "/items/42/",
			wantMatch:  true,
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:      "parameter never spans segments",
			template:  "/items/{id}",
			path:      "/items/42/details",
			wantMatch: false,
		},
		{
			name:      "parameter never matches empty segment",
			template:  "/items/{id}",
			path:      "/items/",
			wantMatch: false,
		},
		{
			name:       "multiple parameters",
			template:   "/users/{uid}/orders/{oid}",
			path:       "/users/alice/orders/900",
			wantMatch:  true,
			wantParams: map[string]string{"uid": "alice", "oid": "900"},
		},
		{
			name:       "root",
			template:   "/",
			path:       "/",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:      "segment count mismatch",
			template:  "/a/{x}/c",
			path:      "/a/b",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ct, err := CompileTemplate(tt.template)
			require.NoError(t, err)

			params, ok := ct.Match(tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantParams, params)
			}
		})
	}
}
