package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// FallbackPrayer is returned whenever the provider cannot answer.
const FallbackPrayer = "May you find peace and strength in this time. " +
	"Know that you are held in love and that hope remains, even in difficult moments. Amen."

const promptTemplate = `You are a compassionate spiritual guide helping to craft prayer responses.

Someone named %s has shared this prayer request:
"%s"

Please write a gentle, faith-affirming prayer response that:
- Acknowledges their specific situation with empathy
- Offers comfort and hope
- Uses inclusive, non-denominational spiritual language
- Ends with "Amen" or similar closing
- Keeps it concise (2-3 sentences)
- Focuses on peace, strength, healing, or guidance as appropriate

Write only the prayer response, nothing else.`

// PrayerComposer turns a prayer request into a short prayer. It never
// fails: provider problems degrade to FallbackPrayer.
type PrayerComposer struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

func NewPrayerComposer(provider Provider, timeout time.Duration, logger *slog.Logger) *PrayerComposer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PrayerComposer{provider: provider, timeout: timeout, logger: logger}
}

// Prompt builds the provider prompt for a request by author.
func Prompt(request, author string) string {
	if strings.TrimSpace(author) == "" {
		author = "someone"
	}
	return fmt.Sprintf(promptTemplate, author, request)
}

// Compose returns a prayer for request that always ends in "Amen".
func (c *PrayerComposer) Compose(ctx context.Context, request, author string) string {
	if c.provider == nil {
		return FallbackPrayer
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.provider.Complete(ctx, Prompt(request, author))
	switch {
	case errors.Is(err, ErrNotConfigured):
		return FallbackPrayer
	case err != nil:
		c.logger.Warn("prayer generation failed", "provider", "anthropic", "error", err)
		return FallbackPrayer
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.logger.Warn("prayer generation returned empty text", "provider", "anthropic")
		return FallbackPrayer
	}
	return ensureAmen(text)
}

func ensureAmen(text string) string {
	trimmed := strings.TrimRight(text, " \t\n.!")
	if strings.HasSuffix(trimmed, "Amen") {
		return text
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text + " Amen."
}
