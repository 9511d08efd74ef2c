package postprocessors

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/docrag/internal/postprocessors/extractor"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildChunker)
	r.Register(extractor.Name, buildExtractor)
}

// buildChunker creates a header chunker from generic config.
// Supported config keys:
//   - max_level (int): Deepest header level that starts a chunk (default: 3)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if level := getIntFromConfig(cfg, "max_level"); level > 0 {
		opts = append(opts, chunker.WithMaxLevel(level))
	}

	return chunker.New(opts...), nil
}

// buildExtractor creates the structured block extractor. It takes no config.
func buildExtractor(_ map[string]any) (driven.PostProcessor, error) {
	return extractor.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
