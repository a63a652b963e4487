// Package tokenizer provides deterministic token-count encodings for
// context-window accounting. Counts are an internal accounting convention:
// they are stable across runs and platforms but make no claim of matching any
// provider's real tokenizer.
package tokenizer

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// Encoding turns text into a sequence of token ids. Only the length of the
// result matters for budgeting; ids are stable hashes kept for debuggability.
type Encoding interface {
	Name() string
	Encode(text string) []int
}

const defaultEncodingName = "cl100k_base"

// Encodings by model family. Unrecognized models fall back to the default.
var modelPrefixes = map[string]string{
	"gpt-4":         defaultEncodingName,
	"gpt-3.5":       defaultEncodingName,
	"gpt-4o":        "o200k_base",
	"o1":            "o200k_base",
	"claude":        defaultEncodingName,
	"anthropic/":    defaultEncodingName,
	"openai/":       defaultEncodingName,
	"meta-llama/":   defaultEncodingName,
	"mistralai/":    defaultEncodingName,
	"deepseek":      defaultEncodingName,
	"google/gemini": defaultEncodingName,
}

// ForModel returns the encoding for the given model name, falling back to the
// default encoding when the model is unrecognized. The second return reports
// whether the model was recognized.
func ForModel(model string) (Encoding, bool) {
	for prefix, name := range modelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return Get(name), true
		}
	}
	return Default(), false
}

// Default returns the fallback encoding.
func Default() Encoding {
	return Get(defaultEncodingName)
}

// Get returns the named encoding. Unknown names return the default heuristic
// under the requested name so counts stay deterministic either way.
func Get(name string) Encoding {
	return &heuristicEncoding{name: name, runesPerToken: 4}
}

// heuristicEncoding approximates BPE behavior: text splits into word and
// punctuation runs, and long runs shard into fixed-width chunks. Roughly four
// characters per token for English prose, which is the usual rule of thumb.
type heuristicEncoding struct {
	name          string
	runesPerToken int
}

func (e *heuristicEncoding) Name() string { return e.name }

func (e *heuristicEncoding) Encode(text string) []int {
	if text == "" {
		return nil
	}
	var tokens []int
	for _, run := range splitRuns(text) {
		runes := []rune(run)
		for i := 0; i < len(runes); i += e.runesPerToken {
			end := i + e.runesPerToken
			if end > len(runes) {
				end = len(runes)
			}
			tokens = append(tokens, tokenID(string(runes[i:end])))
		}
	}
	return tokens
}

// splitRuns breaks text into runs of letters/digits, runs of punctuation, and
// drops whitespace. Each run is tokenized independently.
func splitRuns(text string) []string {
	var runs []string
	var current strings.Builder
	var currentKind rune // 'w' word, 'p' punctuation

	flush := func() {
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
			currentKind = 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if currentKind == 'p' {
				flush()
			}
			currentKind = 'w'
			current.WriteRune(r)
		default:
			if currentKind == 'w' {
				flush()
			}
			currentKind = 'p'
			current.WriteRune(r)
		}
	}
	flush()
	return runs
}

func tokenID(chunk string) int {
	h := fnv.New32a()
	h.Write([]byte(chunk))
	return int(h.Sum32())
}
