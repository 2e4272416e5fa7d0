package transcript

import (
	"fmt"
	"strings"

	"github.com/civiclab/councilsim/core"
)

// FullText renders the complete transcript as plain text grouped by phase.
// This is the form handed to the post-debate analysis chain.
func (t *Transcript) FullText() string {
	var lines []string
	var currentPhase core.Phase

	for _, turn := range t.turns {
		if turn.Phase != currentPhase {
			currentPhase = turn.Phase
			lines = append(lines, fmt.Sprintf("\n--- %s ---\n", PhaseDescriptions[turn.Phase]))
		}
		lines = append(lines, fmt.Sprintf("%s (%s):", turn.PersonaName, turn.PersonaRole))
		lines = append(lines, fmt.Sprintf("  %s", turn.Content))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// ToMarkdown exports the transcript as a markdown document with an optional
// participant roster.
func (t *Transcript) ToMarkdown(cityName string, personas []core.Persona) string {
	var md []string
	md = append(md, "# Council Simulator - Meeting Transcript")
	md = append(md, "")

	if cityName != "" {
		md = append(md, fmt.Sprintf("**City:** %s", cityName))
	}
	md = append(md, fmt.Sprintf("**Proposal:** %s", t.proposalSummary))
	md = append(md, "")

	if len(personas) > 0 {
		md = append(md, "## Participants")
		for _, p := range personas {
			md = append(md, fmt.Sprintf("- **%s** — %s (%s)", p.Name, p.Role, p.Occupation))
		}
		md = append(md, "")
	}

	md = append(md, "## Transcript")
	md = append(md, t.FullText())

	return strings.Join(md, "\n")
}
