// Package generator turns a newsletter issue into short social posts in two
// model calls: one to extract the most interesting topics as structured
// JSON, then one per topic to draft the post itself.
package generator

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/ai/anthropic"
	"github.com/newspulse/newspulse/errors"
	"github.com/newspulse/newspulse/internal/util"
	"github.com/newspulse/newspulse/newsletter"
)

// Topic is one newsletter topic as extracted by the model.
type Topic struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	Thoughts   string   `json:"thoughts"`
	References []string `json:"references"`
}

// Extraction is the full first-stage output.
type Extraction struct {
	NewsletterName string  `json:"newsletter_name"`
	Date           string  `json:"date"`
	Topics         []Topic `json:"topics"`
}

// Draft is a finished post for one topic, not yet scheduled.
type Draft struct {
	Topic   Topic
	Content string
}

// ChatClient is the slice of the Anthropic client the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, req anthropic.ChatRequest) (*anthropic.ChatResponse, error)
}

// Generator drives the two-stage generation flow.
type Generator struct {
	client ChatClient
	logger *zap.SugaredLogger
}

// New creates a generator backed by client. A nil logger disables logging.
func New(client ChatClient, logger *zap.SugaredLogger) *Generator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Generator{client: client, logger: logger}
}

// Run extracts up to topicCount topics from msg and drafts a post for each.
// A topic whose draft call fails is skipped; the run only errors when
// extraction fails or no draft could be produced at all.
func (g *Generator) Run(ctx context.Context, msg *newsletter.Message, topicCount int) ([]Draft, error) {
	extraction, err := g.ExtractTopics(ctx, msg, topicCount)
	if err != nil {
		return nil, err
	}

	drafts := make([]Draft, 0, len(extraction.Topics))
	var lastErr error
	for _, topic := range extraction.Topics {
		content, err := g.DraftPost(ctx, topic)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.Warnw("Skipping topic after draft failure",
				"topic", topic.Title,
				"error", err)
			lastErr = err
			continue
		}
		drafts = append(drafts, Draft{Topic: topic, Content: content})
	}

	if len(drafts) == 0 {
		return nil, errors.Wrap(lastErr, "no drafts produced")
	}

	g.logger.Infow("Generation run complete",
		"newsletter", extraction.NewsletterName,
		"topics", len(extraction.Topics),
		"drafts", len(drafts))

	return drafts, nil
}

// ExtractTopics asks the model for the topicCount most interesting topics
// in msg as structured JSON. A response that is not valid JSON or carries
// no topics is a malformed-response error.
func (g *Generator) ExtractTopics(ctx context.Context, msg *newsletter.Message, topicCount int) (*Extraction, error) {
	resp, err := g.client.Chat(ctx, anthropic.ChatRequest{
		SystemPrompt: extractSystemPrompt(topicCount),
		UserPrompt:   extractUserPrompt(msg),
	})
	if err != nil {
		return nil, errors.Wrap(err, "extracting topics")
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &extraction); err != nil {
		return nil, errors.NewMalformedResponseError("topic extraction returned invalid JSON: %v", err)
	}

	if len(extraction.Topics) == 0 {
		return nil, errors.NewMalformedResponseError("topic extraction returned no topics")
	}
	for i, topic := range extraction.Topics {
		if strings.TrimSpace(topic.Title) == "" {
			return nil, errors.NewMalformedResponseError("topic %d has no title", i)
		}
	}

	g.logger.Debugw("Extracted topics",
		"newsletter", extraction.NewsletterName,
		"count", len(extraction.Topics))

	return &extraction, nil
}

// DraftPost writes the post for a single topic.
func (g *Generator) DraftPost(ctx context.Context, topic Topic) (string, error) {
	resp, err := g.client.Chat(ctx, anthropic.ChatRequest{
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   draftUserPrompt(topic),
		MaxTokens:    util.Ptr(1000),
	})
	if err != nil {
		return "", errors.Wrapf(err, "drafting post for %q", topic.Title)
	}

	content := strings.TrimSpace(stripCodeFence(resp.Content))
	if content == "" {
		return "", errors.NewMalformedResponseError("draft for %q came back empty", topic.Title)
	}
	return content, nil
}

// stripCodeFence removes a surrounding markdown code fence. Models wrap
// JSON in ```json blocks often enough that refusing them just wastes runs.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
