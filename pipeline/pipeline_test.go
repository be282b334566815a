package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recordingController(calls *[]string, name string, outcome Outcome, err error) ControllerFunc {
	return func(_ context.Context, c *Context) (Outcome, error) {
		*calls = append(*calls, name)
		c.Payload[name] = c.Inputs.String("value")
		return outcome, err
	}
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		second      ControllerFunc
		wantCalls   []string
		wantStatus  int
		wantErr     bool
		wantHalted  string
		wantPayload Payload
	}{
		{
			name:        "all steps continue",
			wantCalls:   []string{"first", "second", "third"},
			wantStatus:  http.StatusOK,
			wantPayload: Payload{"first": "1", "second": "2", "third": "3"},
		},
		{
			name: "halt stops the pipeline",
			second: func(_ context.Context, c *Context) (Outcome, error) {
				return c.Fail("second", http.StatusUnauthorized, "Invalid authorization")
			},
			wantCalls:   []string{"first"},
			wantStatus:  http.StatusUnauthorized,
			wantHalted:  "second",
			wantPayload: Payload{"first": "1", "second": "Invalid authorization"},
		},
		{
			name: "error without status becomes 500",
			second: func(context.Context, *Context) (Outcome, error) {
				return Halt, errors.New("disk on fire")
			},
			wantCalls:  []string{"first"},
			wantStatus: http.StatusInternalServerError,
			wantErr:    true,
			wantHalted: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			registry := NewRegistry()
			require.NoError(t, registry.Register("first", recordingController(&calls, "first", Continue, nil)))
			second := tt.second
			if second == nil {
				second = recordingController(&calls, "second", Continue, nil)
			}
			require.NoError(t, registry.Register("second", second))
			require.NoError(t, registry.Register("third", recordingController(&calls, "third", Continue, nil)))

			def := &Definition{Name: "p", Path: "/p", Steps: []Step{
				{Name: "first", Controller: "first", Inputs: map[string]any{"value": "1"}},
				{Name: "second", Controller: "second", Inputs: map[string]any{"value": "2"}},
				{Name: "third", Controller: "third", Inputs: map[string]any{"value": "3"}},
			}}

			c := NewContext("", nil, nil)
			result, err := NewRunner(registry, zap.NewNop()).Run(ctx, def, c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantHalted, result.HaltedAt)
			assert.Equal(t, tt.wantHalted == "", result.Completed)
			if tt.wantPayload != nil {
				assert.Equal(t, tt.wantPayload, c.Payload)
			}
		})
	}
}

func TestRunner_UnknownController(t *testing.T) {
	def := &Definition{Name: "p", Path: "/p", Steps: []Step{{Name: "s", Controller: "missing"}}}

	result, err := NewRunner(NewRegistry(), zap.NewNop()).Run(context.Background(), def, NewContext("id", nil, nil))
	assert.ErrorIs(t, err, ErrUnknownController)
	assert.Equal(t, http.StatusInternalServerError, result.Status)
}

func TestRunner_NilLogger(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("ok", func(context.Context, *Context) (Outcome, error) { return Continue, nil }))
	def := &Definition{Name: "p", Path: "/p", Steps: []Step{{Name: "s", Controller: "ok"}}}

	var result *Result
	assert.NotPanics(t, func() {
		result, _ = NewRunner(registry, nil).Run(context.Background(), def, NewContext("id", nil, nil))
	})
	require.NotNil(t, result)
	assert.True(t, result.Completed)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	noop := func(context.Context, *Context) (Outcome, error) { return Continue, nil }

	require.NoError(t, registry.Register("b", noop))
	require.NoError(t, registry.Register("a", noop))
	assert.ErrorIs(t, registry.Register("a", noop), ErrDuplicateController)
	assert.Error(t, registry.Register("", noop))
	assert.Error(t, registry.Register("c", nil))

	assert.Equal(t, []string{"a", "b"}, registry.IDs())

	_, err := registry.Lookup("z")
	assert.ErrorIs(t, err, ErrUnknownController)
}

func TestContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz", nil)
	r.Header.Set("Authorization", "Bearer t")

	c := NewContext("req-1", Payload{"existing": true}, r)
	assert.Equal(t, "req-1", c.ID)
	assert.Equal(t, "abc", c.Query("code"))
	assert.Equal(t, "Bearer t", c.Header("Authorization"))
	assert.Equal(t, 0, c.Status())

	empty := NewContext("", nil, nil)
	assert.NotEmpty(t, empty.ID)
	assert.Empty(t, empty.Query("code"))
	assert.Empty(t, empty.Header("Authorization"))
	assert.NotNil(t, empty.Payload)

	outcome, err := c.Succeed("out", 1)
	require.NoError(t, err)
	assert.Equal(t, Continue, outcome)
	assert.Equal(t, 1, c.Payload["out"])
}

func TestInputs(t *testing.T) {
	t.Setenv("ECO_TEST_SECRET", "from-env")

	in := Inputs{
		"secret":        "ECO_TEST_SECRET",
		"secretFromEnv": true,
		"plain":         "  literal  ",
		"flag":          "true",
		"count":         3,
		"scopes":        []any{"openid", " email ", 7, ""},
		"csv":           "a, b,,c",
	}

	assert.Equal(t, "literal", in.String("plain"))
	assert.Equal(t, "3", in.String("count"))
	assert.Equal(t, "", in.String("missing"))
	assert.True(t, in.Bool("flag"))
	assert.True(t, in.Bool("secretFromEnv"))
	assert.False(t, in.Bool("plain"))
	assert.Equal(t, []string{"openid", "email"}, in.Strings("scopes"))
	assert.Equal(t, []string{"a", "b", "c"}, in.Strings("csv"))
	assert.Empty(t, in.Strings("missing"))

	assert.Equal(t, "from-env", in.Value("secret", "secretFromEnv"))
	assert.Equal(t, "literal", in.Value("plain", "plainFromEnv"))
	assert.Equal(t, "fallback", in.Or("missing", "fallback"))

	assert.Equal(t, keys.Env("ECO_TEST_SECRET"), in.Ref("secret", "secretFromEnv"))
	assert.Equal(t, keys.Literal("literal"), in.Ref("plain", "plainFromEnv"))
}

const sampleFile = `
clients:
  - name: web
    client_id: web-id
    client_secret: web-secret
    redirect_uri: https://app.example.com/callback
pipelines:
  - name: protected
    method: get
    path: /protected
    steps:
      - name: verify
        controller: first
        inputs:
          responseKey: user
`

func TestParseFile(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("first", func(context.Context, *Context) (Outcome, error) { return Continue, nil }))

	t.Run("valid file", func(t *testing.T) {
		file, err := ParseFile([]byte(sampleFile), registry)
		require.NoError(t, err)
		require.Len(t, file.Pipelines, 1)
		assert.Equal(t, "GET", file.Pipelines[0].Method)
		assert.Equal(t, "user", file.Pipelines[0].Steps[0].Inputs["responseKey"])
		require.Len(t, file.Clients, 1)
		assert.Equal(t, "web-secret", file.Clients[0].ClientSecret)
	})

	t.Run("unknown controller", func(t *testing.T) {
		_, err := ParseFile([]byte(sampleFile), NewRegistry())
		assert.ErrorIs(t, err, ErrUnknownController)
	})

	t.Run("missing steps", func(t *testing.T) {
		_, err := ParseFile([]byte("pipelines:\n  - name: empty\n    path: /empty\n"), registry)
		assert.Error(t, err)
	})

	t.Run("duplicate route", func(t *testing.T) {
		dup := `
pipelines:
  - {name: a, path: /x, steps: [{name: s, controller: first}]}
  - {name: b, path: /x, method: GET, steps: [{name: s, controller: first}]}
`
		_, err := ParseFile([]byte(dup), registry)
		assert.ErrorContains(t, err, "duplicate route")
	})

	t.Run("invalid client", func(t *testing.T) {
		_, err := ParseFile([]byte("clients:\n  - name: web\n"), registry)
		assert.Error(t, err)
	})

	t.Run("null client entry", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() {
			_, err = ParseFile([]byte("clients:\n  - \npipelines: []\n"), nil)
		})
		assert.ErrorContains(t, err, "clients[0]: empty entry")
	})

	t.Run("null pipeline entry", func(t *testing.T) {
		_, err := ParseFile([]byte("pipelines:\n  - \n"), registry)
		assert.ErrorContains(t, err, "pipelines[0]: empty entry")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseFile([]byte("pipelines: ["), registry)
		assert.Error(t, err)
	})

	t.Run("load from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipelines.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o600))

		file, err := LoadFile(path, registry)
		require.NoError(t, err)
		assert.Len(t, file.Pipelines, 1)

		_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), registry)
		assert.Error(t, err)
	})
}
