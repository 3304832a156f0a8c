package judge

import (
	"fmt"
	"strings"

	"github.com/mkaline/recall/internal/model"
)

// MergePrompt generates the prompt for synthesizing one memory out of a
// consolidation cluster.
func MergePrompt(members []*model.Memory) string {
	var sb strings.Builder
	for i, m := range members {
		fmt.Fprintf(&sb, "MEMORY %d (type=%s, importance=%d):\n%s\n\n", i+1, m.Type, m.Importance, m.Content)
	}

	return fmt.Sprintf(`You are a memory consolidation system. These memories say nearly the same thing and are being merged into one.

%sWrite a single replacement memory that:
- Preserves every distinct fact from the originals
- Drops repetition
- Stays in the same voice and tense as the originals
- Is no longer than the longest original unless a fact would be lost

Return ONLY the replacement memory text, no preamble.`, sb.String())
}

// ConflictPrompt generates the prompt for a second opinion on a detected
// contradiction.
func ConflictPrompt(a, b *model.Memory) string {
	return fmt.Sprintf(`You are reviewing two stored memories that were flagged as contradictory.

MEMORY A:
%s

MEMORY B:
%s

Do these memories actually contradict each other? Consider that they may
describe different times, different projects, or compatible facts.

Return ONLY one word: CONFIRM if they contradict, REJECT if they do not.`, a.Content, b.Content)
}
