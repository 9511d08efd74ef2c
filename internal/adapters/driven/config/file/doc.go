// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration in ~/.docrag/config.toml
//   - PromptStore: user-editable prompt templates in ~/.docrag/prompts
package file
