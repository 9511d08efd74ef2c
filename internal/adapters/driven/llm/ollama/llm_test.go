package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func TestLLMService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.False(t, req.Stream)
			assert.Equal(t, 200, req.Options.NumPredict)
			_, _ = w.Write([]byte(`{"response":" rewritten question "}`))
		case "/api/chat":
			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.InDelta(t, 0.5, req.Options.Temperature, 0)
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"answer"}}`))
		case "/api/tags":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	assert.Equal(t, DefaultModel, svc.ModelName())

	out, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "rewritten question", out)

	out, err = svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "s"}, {Role: driven.RoleUser, Content: "u"},
	}, driven.ChatOptions{Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "answer", out)

	require.NoError(t, svc.Ping(context.Background()))
}

func TestLLMService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "ollama: send request")
}
