package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// The directory and default files are created on first Load, never in
// the constructor.
type PromptStore struct {
	dir string

	initOnce sync.Once
	initErr  error

	mu    sync.RWMutex
	cache map[string]string
}

//nolint:lll // prompt text is not wrapped
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `You are a helpful assistant that answers questions about an API using its documentation.
Answer only from the provided context. Quote JSON examples and table values exactly.
If the context does not contain the answer, say so.`,

	driven.PromptAnswer: `Context from the documentation:

%s

Question: %s`,

	driven.PromptClarify: `Rewrite the following user question to be explicit, short, and to the point, using the previous user question and the last search result as context.
Return ONLY the rewritten question, nothing else.

Previous question: %s
Last search result: %s
Question: %s
Rewritten:`,
}

const promptReadme = `# docrag prompts

Templates used when answering questions about ingested documentation.

- chat_system.txt: system message sent with every answer
- answer.txt: wraps the retrieved context (first %s) and the question (second %s)
- clarify.txt: rewrites chat follow-ups; receives the previous question,
  the last search result and the new question, in that order

Edits apply to the next command. Keep the %s placeholders in order.
Delete a file to restore its default.
`

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.docrag/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docrag", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the named template, preferring the file on disk and
// falling back to the built-in default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil || strings.TrimSpace(string(data)) == "" {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if err == nil {
			err = errors.New("file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	prompt = strings.TrimSpace(string(data))
	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// initialise writes any missing default files and the README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content + "\n"
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("write %s: %w", name, err)
			return
		}
	}
}
