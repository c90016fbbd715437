package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labreport-import/internal/common"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(b, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url + "/v1", Model: "vision-test", Timeout: 5 * time.Second}, nil)
}

func TestComplete_SendsPromptAndPages(t *testing.T) {
	var seen capturedRequest
	reply := `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" {\"rows\":[]} "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`
	srv := newServer(t, http.StatusOK, reply, &seen)

	got, err := newTestClient(srv.URL).Complete(context.Background(), "read it", [][]byte{[]byte("\x89PNG\r\n\x1a\npage1"), []byte("\x89PNG\r\n\x1a\npage2")})
	require.NoError(t, err)
	assert.Equal(t, `{"rows":[]}`, got)

	assert.Equal(t, "vision-test", seen.Model)
	require.Len(t, seen.Messages, 1)
	parts := seen.Messages[0].Content
	require.Len(t, parts, 3)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "read it", parts[0].Text)
	for _, p := range parts[1:] {
		assert.Equal(t, "image_url", p.Type)
		require.NotNil(t, p.ImageURL)
		assert.True(t, strings.HasPrefix(p.ImageURL.URL, "data:image/png;base64,"))
	}
}

func TestComplete_ServerErrorIsTransient(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`, nil)
	_, err := newTestClient(srv.URL).Complete(context.Background(), "p", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTransientService))
}

func TestComplete_BadRequestIsNotTransient(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest, `{"error":{"message":"bad image","type":"invalid_request_error"}}`, nil)
	_, err := newTestClient(srv.URL).Complete(context.Background(), "p", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrTransientService))
}

func TestComplete_NoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id":"c1","choices":[]}`, nil)
	_, err := newTestClient(srv.URL).Complete(context.Background(), "p", nil)
	assert.True(t, errors.Is(err, common.ErrMalformedReply))
}

func TestComplete_NoAPIKey(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.Complete(context.Background(), "p", nil)
	assert.True(t, errors.Is(err, common.ErrNotConfigured))
}

func TestConfigFromVision(t *testing.T) {
	cfg := ConfigFromVision(common.VisionConfig{APIKey: "k", Model: "m", MaxTokens: 10, Timeout: time.Second})
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, 10, cfg.MaxTokens)
}
