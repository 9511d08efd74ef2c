package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure ChatSession implements the interfaces.
var (
	_ driving.ChatSession     = (*ChatSession)(nil)
	_ driven.PromptStoreAware = (*ChatSession)(nil)
)

// defaultClarifyPrompt is the fallback prompt when no PromptStore is configured.
const defaultClarifyPrompt = `Rewrite the following user question to be explicit, short, and to the point, using the previous user question and the last search result as context.
Return ONLY the rewritten question, nothing else.

Previous question: %s
Last search result: %s
Question: %s
Rewritten:`

// ChatSession answers a sequence of questions, rewriting follow-ups into
// standalone questions before retrieval.
type ChatSession struct {
	answers     driving.AnswerService
	llm         driven.LLMService
	opts        domain.SearchOptions
	promptStore driven.PromptStore

	mu           sync.Mutex
	lastQuestion string
	lastResult   string
}

// NewChatSession creates a chat session. Without an LLM, follow-ups are
// retrieved as asked.
func NewChatSession(answers driving.AnswerService, llm driven.LLMService, opts domain.SearchOptions) *ChatSession {
	return &ChatSession{
		answers: answers,
		llm:     llm,
		opts:    opts,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *ChatSession) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Ask answers the next question in the conversation.
func (c *ChatSession) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	question = strings.TrimSpace(question)
	query := c.clarify(ctx, question)

	answer, err := c.answers.Answer(ctx, query, c.opts)
	if err != nil {
		return nil, err
	}

	c.lastQuestion = query
	c.lastResult = ""
	if len(answer.Results) > 0 {
		c.lastResult = answer.Results[0].Chunk.Content
	}
	return answer, nil
}

// Reset forgets the conversation history.
func (c *ChatSession) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastQuestion = ""
	c.lastResult = ""
}

// clarify rewrites a follow-up question using the previous turn.
// The first question, or any LLM failure, leaves it unchanged.
func (c *ChatSession) clarify(ctx context.Context, question string) string {
	if c.llm == nil || c.lastQuestion == "" || question == "" {
		return question
	}

	prompt := fmt.Sprintf(c.loadPrompt(), c.lastQuestion, c.lastResult, question)
	rewritten, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 200, Temperature: 0})
	if err != nil {
		logger.Warn("Clarify failed, using question as asked: %v", err)
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	logger.Debug("Clarified %q as %q", question, rewritten)
	return rewritten
}

func (c *ChatSession) loadPrompt() string {
	if c.promptStore == nil {
		return defaultClarifyPrompt
	}
	prompt, err := c.promptStore.Load(driven.PromptClarify)
	if err != nil || prompt == "" {
		return defaultClarifyPrompt
	}
	return prompt
}

// IsExitCommand reports whether a chat line ends the conversation.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	default:
		return false
	}
}
