package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// NoResultsMessage is the answer when retrieval finds nothing relevant.
const NoResultsMessage = "I couldn't find any relevant information in the documentation to answer your question."

// FallbackPrefix introduces the raw context when the LLM cannot answer.
const FallbackPrefix = "Based on the documentation, here's what I found:\n\n"

const resultSeparator = "--------------------------------------------------"

// defaultChatSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultChatSystemPrompt = `You are a helpful assistant that answers questions about an API using its documentation.
Answer only from the provided context. Quote JSON examples and table values exactly.
If the context does not contain the answer, say so.`

// defaultAnswerPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerPrompt = `Context from the documentation:

%s

Question: %s`

// AnswerService answers questions from retrieved documentation chunks.
type AnswerService struct {
	search      driving.SearchService
	llm         driven.LLMService
	settings    domain.LLMSettings
	promptStore driven.PromptStore
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it answers are the formatted context.
func NewAnswerService(search driving.SearchService, llm driven.LLMService, settings domain.LLMSettings) *AnswerService {
	return &AnswerService{
		search:   search,
		llm:      llm,
		settings: settings,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Answer retrieves context for the question and generates an answer.
func (s *AnswerService) Answer(
	ctx context.Context, question string, opts domain.SearchOptions,
) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	results, err := s.search.Search(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Query: question, Results: results}
	if len(results) == 0 {
		answer.Text = NoResultsMessage
		return answer, nil
	}

	docContext := FormatContext(results)
	if s.llm == nil {
		logger.Debug("No LLM configured, returning retrieved context")
		answer.Text = FallbackPrefix + docContext
		return answer, nil
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.loadPrompt(driven.PromptChatSystem, defaultChatSystemPrompt)},
		{Role: driven.RoleUser, Content: fmt.Sprintf(s.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt), docContext, question)},
	}

	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Warn("LLM answer failed, returning retrieved context: %v", err)
		answer.Text = FallbackPrefix + docContext
		return answer, nil
	}

	answer.Text = text
	answer.Generated = true
	return answer, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// FormatContext renders search results as the context given to the LLM.
// Each result lists its content, JSON examples and tables.
func FormatContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i := range results {
		chunk := &results[i].Chunk
		fmt.Fprintf(&b, "Content: %s\n", chunk.Content)

		var jsonBlocks, tables []domain.StructuredBlock
		for _, block := range chunk.Blocks {
			switch block.Kind {
			case domain.BlockKindJSON:
				jsonBlocks = append(jsonBlocks, block)
			case domain.BlockKindTable:
				tables = append(tables, block)
			}
		}

		if len(jsonBlocks) > 0 {
			b.WriteString("\nJSON Examples:\n")
			for _, block := range jsonBlocks {
				enc := json.NewEncoder(&b)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				if err := enc.Encode(block.JSON); err != nil {
					b.WriteString(block.Raw)
					b.WriteString("\n")
				}
			}
		}

		if len(tables) > 0 {
			b.WriteString("\nTable Information:\n")
			for _, block := range tables {
				fmt.Fprintf(&b, "Headers: %s\n", strings.Join(block.Headers, ", "))
				b.WriteString("Content:\n")
				for _, row := range block.Rows {
					cells := make([]string, 0, len(block.Headers))
					for _, h := range block.Headers {
						cells = append(cells, h+": "+row[h])
					}
					fmt.Fprintf(&b, "  %s\n", strings.Join(cells, ", "))
				}
				if len(block.Metadata) > 0 {
					meta, err := json.Marshal(block.Metadata)
					if err == nil {
						fmt.Fprintf(&b, "Metadata: %s\n", meta)
					}
				}
			}
		}

		b.WriteString("\n" + resultSeparator + "\n")
	}
	return b.String()
}
