package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "lumen-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestComplete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	text, err := c.Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestCompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Complete(context.Background(), "system", "prompt")
	assert.ErrorIs(t, err, xerrors.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Complete(context.Background(), "system", "prompt")
	assert.ErrorIs(t, err, xerrors.ErrProviderUnavailable)
}

func TestCompleteUnconfigured(t *testing.T) {
	c := NewClient(ClientConfig{})
	assert.False(t, c.Configured())

	_, err := c.Complete(context.Background(), "system", "prompt")
	assert.ErrorIs(t, err, xerrors.ErrProviderUnavailable)
}

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Plan string `json:"recommended_plan"`
	}

	var p payload
	err := ExtractJSON("Sure! Here is my answer:\n```json\n{\"recommended_plan\": \"basic-fiber\"}\n```\nHope that helps.", &p)
	require.NoError(t, err)
	assert.Equal(t, "basic-fiber", p.Plan)

	err = ExtractJSON("no json here at all", &p)
	assert.ErrorIs(t, err, xerrors.ErrProviderUnavailable)

	err = ExtractJSON("prefix {not valid json} suffix", &p)
	assert.ErrorIs(t, err, xerrors.ErrProviderUnavailable)
}
