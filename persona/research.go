package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
)

const researchPrompt = `Summarize what you know about %s for the following:

Key Information Needed:
- population and demographics
- major employers and economy
- water supply infrastructure
- power grid capacity
- recent development controversies
- school districts near potential sites

Additional Context:
- Note any recent data center or large development proposals
- Note any community pushback against development
- Name specific neighborhood names, roads, and landmarks
- Identify the city council composition if possible

If you are unsure about this specific city, describe what is typical for a
city of its kind in the region. Format findings as short structured facts
that can be used to create realistic city council meeting personas.`

// research runs the time-boxed city research call. Failures and timeouts
// are non-fatal: generation proceeds without notes.
func (g *Generator) research(ctx context.Context, input core.SimulationInput) string {
	researchCtx, cancel := context.WithTimeout(ctx, g.researchTimeout)
	defer cancel()

	text, err := completion(researchCtx, g.model, model.Request{
		Messages:  []model.Message{{Role: "user", Text: fmt.Sprintf(researchPrompt, input.CityContext())}},
		MaxTokens: 1024,
	})
	if err != nil {
		g.logger.Warn("city research skipped", "city", input.CityContext(), "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
