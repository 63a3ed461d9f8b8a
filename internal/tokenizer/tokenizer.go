// Package tokenizer estimates prompt token counts for usage logging.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens in generation prompts.
type Tokenizer interface {
	// CountTokens counts tokens in a text string for a given model.
	CountTokens(text string, model string) (int, error)
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base"
	EncodingO200kBase  = "o200k_base" // GPT-4o family, gpt-image-1
)

// modelEncoding pairs a prefix with its encoding.
type modelEncoding struct {
	prefix   string
	encoding string
}

// modelEncodings lists model prefixes and their encodings.
// Ordered by prefix length (longest first) to ensure correct matching.
var modelEncodings = []modelEncoding{
	{"gpt-image", EncodingO200kBase},
	{"gpt-4o", EncodingO200kBase},
	{"dall-e", EncodingCL100kBase},
	{"gpt-4", EncodingCL100kBase},
}

// TiktokenTokenizer implements Tokenizer using tiktoken-go. Image-only
// models have no published tokenization; counts for those are estimates
// under the nearest text encoding and are used for logging only.
type TiktokenTokenizer struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates a new TiktokenTokenizer.
func New() *TiktokenTokenizer {
	return &TiktokenTokenizer{
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// getEncoding returns the tiktoken encoding for a model, with caching.
func (t *TiktokenTokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	encodingName := t.resolveEncoding(model)

	t.mu.RLock()
	enc, ok := t.encodings[encodingName]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if enc, ok = t.encodings[encodingName]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	t.encodings[encodingName] = enc
	return enc, nil
}

// resolveEncoding determines the encoding name for a model.
func (t *TiktokenTokenizer) resolveEncoding(model string) string {
	modelLower := strings.ToLower(model)

	for _, me := range modelEncodings {
		if strings.HasPrefix(modelLower, me.prefix) {
			return me.encoding
		}
	}

	// Default for unknown models (gemini, stable diffusion checkpoints, ...)
	return EncodingCL100kBase
}

// CountTokens counts tokens in a text string for a given model.
func (t *TiktokenTokenizer) CountTokens(text string, model string) (int, error) {
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	tokens := enc.Encode(text, nil, nil)
	return len(tokens), nil
}
