package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/ai/anthropic"
	"github.com/newspulse/newspulse/errors"
	"github.com/newspulse/newspulse/newsletter"
)

const extractionJSON = `{
  "newsletter_name": "AI News",
  "date": "March 2, 2026",
  "topics": [
    {
      "title": "Context windows keep growing",
      "summary": "Another lab doubled its context window.",
      "key_points": ["cheaper long-document work", "fewer chunking hacks"],
      "thoughts": "Retrieval pipelines may get simpler.",
      "references": ["ExampleLab"]
    },
    {
      "title": "Open weights for a coding model",
      "summary": "A strong coding model shipped with open weights.",
      "key_points": ["local inference", "fine-tuning"],
      "thoughts": "Worth benchmarking against the hosted ones.",
      "references": []
    }
  ]
}`

// scriptedClient returns canned responses in order, recording prompts.
type scriptedClient struct {
	responses []string
	errs      []error
	requests  []anthropic.ChatRequest
}

func (c *scriptedClient) Chat(_ context.Context, req anthropic.ChatRequest) (*anthropic.ChatResponse, error) {
	i := len(c.requests)
	c.requests = append(c.requests, req)

	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		return nil, errors.New("no scripted response left")
	}
	return &anthropic.ChatResponse{Content: c.responses[i]}, nil
}

func testMessage() *newsletter.Message {
	return &newsletter.Message{
		ID:      "<issue-42@example.org>",
		Subject: "AI News: Issue 42",
		Body:    "Lots of things happened this week.",
	}
}

func TestRun(t *testing.T) {
	client := &scriptedClient{responses: []string{
		extractionJSON,
		"First post text",
		"Second post text",
	}}
	g := New(client, nil)

	drafts, err := g.Run(context.Background(), testMessage(), 2)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Context windows keep growing", drafts[0].Topic.Title)
	assert.Equal(t, "First post text", drafts[0].Content)
	assert.Equal(t, "Second post text", drafts[1].Content)

	// One extraction call plus one draft call per topic
	require.Len(t, client.requests, 3)
	assert.Contains(t, client.requests[0].UserPrompt, "AI News: Issue 42")
	assert.Contains(t, client.requests[1].UserPrompt, "Context windows keep growing")
	assert.Contains(t, client.requests[2].UserPrompt, "Open weights for a coding model")
}

func TestRunSkipsFailedDraft(t *testing.T) {
	client := &scriptedClient{
		responses: []string{extractionJSON, "", "Only surviving post"},
		errs:      []error{nil, errors.New("model hiccup"), nil},
	}
	g := New(client, nil)

	drafts, err := g.Run(context.Background(), testMessage(), 2)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Only surviving post", drafts[0].Content)
}

func TestRunAllDraftsFail(t *testing.T) {
	client := &scriptedClient{
		responses: []string{extractionJSON, "", ""},
		errs:      []error{nil, errors.New("down"), errors.New("down")},
	}
	g := New(client, nil)

	_, err := g.Run(context.Background(), testMessage(), 2)
	assert.Error(t, err)
}

func TestExtractTopicsCodeFence(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"```json\n" + extractionJSON + "\n```",
	}}
	g := New(client, nil)

	extraction, err := g.ExtractTopics(context.Background(), testMessage(), 2)
	require.NoError(t, err)
	assert.Len(t, extraction.Topics, 2)
	assert.Equal(t, "AI News", extraction.NewsletterName)
}

func TestExtractTopicsMalformed(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "Sure! Here are the topics you asked for."},
		{"empty topics", `{"newsletter_name":"AI News","date":"x","topics":[]}`},
		{"missing title", `{"topics":[{"summary":"no title here"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &scriptedClient{responses: []string{tc.response}}
			g := New(client, nil)

			_, err := g.ExtractTopics(context.Background(), testMessage(), 2)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedResponseError(err))
		})
	}
}

func TestDraftPostEmptyResponse(t *testing.T) {
	client := &scriptedClient{responses: []string{"   "}}
	g := New(client, nil)

	_, err := g.DraftPost(context.Background(), Topic{Title: "T"})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponseError(err))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, "plain text", stripCodeFence("plain text"))
}

func TestDraftUserPromptIncludesReferences(t *testing.T) {
	prompt := draftUserPrompt(Topic{
		Title:      "T",
		KeyPoints:  []string{"a", "b"},
		References: []string{"ExampleLab", "OtherCo"},
	})
	assert.True(t, strings.Contains(prompt, "ExampleLab, OtherCo"))
}
