package generator

import (
	"fmt"
	"strings"

	"github.com/newspulse/newspulse/newsletter"
)

func extractSystemPrompt(topicCount int) string {
	return fmt.Sprintf(`You are an expert content analyst. Analyze the provided newsletter and extract exactly %d of its most interesting topics.

For each topic provide:
1. A catchy title
2. A brief summary (2-3 sentences)
3. 3-4 key points about why the topic matters
4. Personal thoughts worth sharing about it
5. References: specific people, companies, organizations, or products the newsletter mentions in relation to the topic

Respond with ONLY a JSON object of this shape, no text before or after:

{
  "newsletter_name": "...",
  "date": "...",
  "topics": [
    {
      "title": "...",
      "summary": "...",
      "key_points": ["...", "..."],
      "thoughts": "...",
      "references": ["...", "..."]
    }
  ]
}`, topicCount)
}

func extractUserPrompt(msg *newsletter.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	if !msg.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", msg.Date.Format("January 2, 2006"))
	}
	fmt.Fprintf(&b, "\nNewsletter content:\n%s\n", msg.Body)
	return b.String()
}

const draftSystemPrompt = `You are a professional content writer. Write a short social post in an authentic first-person voice about the topic provided, as if a real person were sharing something they found genuinely interesting.

The post should:
1. Be conversational and professionally written, but not formal
2. Include a personal take on the topic
3. Stay under 280 characters so it fits a microblogging feed
4. Mention the relevant people or companies from the references when natural
5. Avoid stock LLM phrasing such as "in this day and age", "game-changer", or the "it isn't about X, it's about Y" pattern
6. Use no hashtag spam; at most one hashtag, and only if it earns its place

Respond with ONLY the post text, no quotes or commentary.`

func draftUserPrompt(topic Topic) string {
	references := "none specified"
	if len(topic.References) > 0 {
		references = strings.Join(topic.References, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", topic.Title)
	fmt.Fprintf(&b, "Summary: %s\n\n", topic.Summary)
	b.WriteString("Key points:\n")
	for _, p := range topic.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "\nPersonal thoughts: %s\n\n", topic.Thoughts)
	fmt.Fprintf(&b, "References: %s\n", references)
	return b.String()
}
