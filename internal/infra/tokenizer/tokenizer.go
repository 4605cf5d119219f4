// Package tokenizer counts LLM tokens so prompts stay within budget.
package tokenizer

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens for a model, falling back to a rune based estimate
// when the encoding cannot be loaded.
type Counter struct {
	model  string
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter constructs a counter for model.
func NewCounter(model string, logger *slog.Logger) *Counter {
	return &Counter{model: model, logger: logger.With("component", "tokenizer")}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err != nil {
			c.logger.Warn("token encoding unavailable, using estimates", "model", c.model, "error", err)
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Estimate provides a rough, upper-biased token count without an encoding.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}

// TrimToBudget keeps the newest items whose combined count fits in budget.
// Items are ordered oldest first and the result preserves that order.
func TrimToBudget(items []string, budget int, count func(string) int) []string {
	if budget <= 0 || len(items) == 0 {
		return nil
	}
	used := 0
	start := len(items)
	for i := len(items) - 1; i >= 0; i-- {
		n := count(items[i])
		if used+n > budget {
			break
		}
		used += n
		start = i
	}
	return items[start:]
}
