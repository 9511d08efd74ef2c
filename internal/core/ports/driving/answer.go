package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// AnswerService answers questions from retrieved documentation.
type AnswerService interface {
	// Answer retrieves context for the question and asks the LLM.
	// When nothing relevant is found the answer says so; when the LLM fails
	// the answer is the formatted context itself. Neither case is an error.
	Answer(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error)
}

// ChatSession is a conversation over the documentation.
// Follow-up questions are rewritten into standalone ones using the
// previous question and answer before retrieval.
type ChatSession interface {
	// Ask answers the next question in the conversation.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Reset forgets the conversation history.
	Reset()
}
