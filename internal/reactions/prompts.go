package reactions

import (
	"encoding/json"
	"fmt"
	"strings"
)

const threadSystemPrompt = `You are an editor for a news reaction site. Given a news headline, invent a short "online forum reaction" thread about it.

Hard rules:
- Every comment is fictitious. Never reproduce or paraphrase real forum posts or attribute anything to real people.
- No defamation, no slurs, no asserting unverified facts as true.
- Comments read like casual online banter, each under 60 characters.

Return ONLY valid JSON in exactly this shape:
{"board":"one-word board name","popularity":0-100,"comments":[{"no":1,"text":"...","likes":0},{"no":2,"text":"...","likes":0},{"no":3,"text":"...","likes":0}]}`

// ThreadPrompt builds the system and user prompts for reaction synthesis.
func ThreadPrompt(title, category string) (systemPrompt, userPrompt string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Headline: %s\n", title)
	fmt.Fprintf(&b, "Category: %s\n", category)
	return threadSystemPrompt, b.String()
}

// decodeReply unwraps a possibly-fenced JSON reply into a ThreadReply.
func decodeReply(text string) (*ThreadReply, error) {
	cleaned := extractJSON(text)

	var reply ThreadReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, fmt.Errorf("parsing reply JSON: %w", err)
	}
	return &reply, nil
}

// extractJSON strips markdown code fences from a string that may contain
// JSON wrapped in ```json ... ``` or ``` ... ``` blocks. This handles the
// common case where LLMs return JSON inside code fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```json"); found {
		s = after
	} else if after, found := strings.CutPrefix(s, "```"); found {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
