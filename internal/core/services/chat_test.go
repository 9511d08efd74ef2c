package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestChatSession_FirstQuestionNotClarified(t *testing.T) {
	search := &mockSearchService{results: sampleResults()}
	llm := &mockLLMService{response: "answer", generated: "rewritten"}
	session := NewChatSession(NewAnswerService(search, llm, domain.LLMSettings{}), llm, domain.SearchOptions{})

	_, err := session.Ask(context.Background(), "How do I create an order?")
	require.NoError(t, err)
	assert.Equal(t, []string{"How do I create an order?"}, search.queries)
	assert.Empty(t, llm.prompts)
}

func TestChatSession_FollowUpClarified(t *testing.T) {
	search := &mockSearchService{results: sampleResults()}
	llm := &mockLLMService{response: "answer", generated: "  What fields does the create order request take?  "}
	session := NewChatSession(NewAnswerService(search, llm, domain.LLMSettings{}), llm, domain.SearchOptions{})

	_, err := session.Ask(context.Background(), "How do I create an order?")
	require.NoError(t, err)
	answer, err := session.Ask(context.Background(), "what fields?")
	require.NoError(t, err)

	assert.Equal(t, "What fields does the create order request take?", answer.Query)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Previous question: How do I create an order?")
	assert.Contains(t, llm.prompts[0], "Last search result: ## Create order")
	assert.Contains(t, llm.prompts[0], "Question: what fields?")
}

func TestChatSession_ClarifyFailureKeepsQuestion(t *testing.T) {
	search := &mockSearchService{results: sampleResults()}
	answerLLM := &mockLLMService{response: "answer"}
	clarifyLLM := &mockLLMService{err: assert.AnError}
	session := NewChatSession(NewAnswerService(search, answerLLM, domain.LLMSettings{}), clarifyLLM, domain.SearchOptions{})

	_, _ = session.Ask(context.Background(), "first")
	_, err := session.Ask(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, search.queries)
}

func TestChatSession_Reset(t *testing.T) {
	search := &mockSearchService{results: sampleResults()}
	llm := &mockLLMService{response: "answer", generated: "rewritten"}
	session := NewChatSession(NewAnswerService(search, llm, domain.LLMSettings{}), llm, domain.SearchOptions{})

	_, _ = session.Ask(context.Background(), "first")
	session.Reset()
	_, err := session.Ask(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, search.queries)
	assert.Empty(t, llm.prompts)
}

func TestIsExitCommand(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"exit", true},
		{"QUIT", true},
		{"  Exit  ", true},
		{"exit now", false},
		{"", false},
		{"how do I quit an order?", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExitCommand(tt.line))
		})
	}
}
