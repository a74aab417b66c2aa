package validator

import (
	"fmt"
	"strings"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/quest"
)

const systemPrompt = `You are a trading mentor grading a student's chart-marking exercise.

Rules:
- Grade each listed criterion independently against the markings provided.
- A criterion passes only if the markings clearly demonstrate it. Missing markings fail the criterion.
- Marking positions are chart coordinates; type tags name the structure the student claims (HH, HL, OB, FVG and similar).
- Feedback messages address the student directly, one sentence, specific to what they marked.
- For a failed criterion, give one concrete suggestion. For a passed criterion, leave the suggestion empty.
- Return every criterion exactly as named in the prompt, in the same order.`

// buildUserMessage constructs the grading prompt for one attempt.
func buildUserMessage(q catalog.QuestDefinition, markings []quest.Marking) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Quest: %s\n", q.Title)
	fmt.Fprintf(&b, "Description: %s\n", q.Description)

	b.WriteString("\nCriteria to grade:\n")
	for _, c := range q.Criteria {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	b.WriteString("\nStudent markings:\n")
	if len(markings) == 0 {
		b.WriteString("None\n")
		return b.String()
	}
	for i, m := range markings {
		fmt.Fprintf(&b, "%d. type=%s label=%q at (%.2f, %.2f)\n", i+1, m.Type, m.Label, m.X, m.Y)
	}

	return b.String()
}
