package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/llm"
)

var _ llm.VisionClient = (*Client)(nil)

// Complete sends the prompt and every page image in one user message and
// returns the first choice's text. Transport failures, 5xx and 429 answers
// are reported as transient; anything else as a plain error.
func (c *Client) Complete(ctx context.Context, prompt string, images [][]byte) (string, error) {
	start := time.Now()
	logger := common.Logger(ctx, c.logger)
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", common.NewAppError("VISION_DISABLED", "no api key", common.ErrNotConfigured)
	}

	parts := make([]goopenai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: prompt})
	var imageBytes int
	for _, img := range images {
		imageBytes += len(img)
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    llm.ImageDataURL(img),
				Detail: goopenai.ImageURLDetailHigh,
			},
		})
	}

	logger.Info("llm.vision.start",
		"model", c.cfg.Model,
		"pages", len(images),
		"image_bytes", imageBytes,
		"prompt_len", len(prompt),
	)

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		logger.Error("llm.vision.http_error",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		logger.Error("llm.vision.no_choices", "elapsed_ms", time.Since(start).Milliseconds())
		return "", common.NewAppError("MALFORMED_REPLY", "no choices in response", common.ErrMalformedReply)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.Info("llm.vision.ok",
		"reply_len", len(content),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return common.TransientService("vision model unavailable", err)
		}
		return common.WrapError(err, "vision request rejected")
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 &&
		reqErr.HTTPStatusCode != http.StatusTooManyRequests && reqErr.HTTPStatusCode < 500 {
		return common.WrapError(err, "vision request rejected")
	}
	return common.TransientService("vision model unreachable", err)
}
