package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/model"
)

const generationPrompt = `You are an expert in municipal politics and community dynamics. Your task is to create realistic personas for a city council meeting simulation about a data center proposal.

CITY: %s
PROPOSAL: %s
COMMUNITY CONCERNS: %s
%s
Create the following personas:

1. A MODERATOR (city council chairperson) - neutral, procedural
2. A PETITIONER (data center company representative) - professional, data-driven
3. Three RESIDENTS with DIFFERENT concerns and DIFFERENT personalities:
   - One CONCERNED PARENT type (worried about children/schools/safety)
   - One ENVIRONMENTAL ACTIVIST type (worried about water/power/environment)
   - One PROPERTY OWNER type (worried about home values/noise/neighborhood)

For each persona, provide a JSON object with these fields:
- id: unique string id (e.g., "moderator", "petitioner", "resident-1")
- name: realistic full name for someone in this city
- role: "moderator", "petitioner", or "resident"
- archetype: null for moderator/petitioner, or "concerned_parent", "environmental_activist", "property_owner" for residents
- age: realistic age
- occupation: relevant to their role
- background: 2-3 sentences about who they are, referencing local details
- speaking_style: how they talk at meetings
- primary_concern: their #1 concern (specific to this proposal)
- secondary_concerns: list of 1-2 additional concerns
- intensity: 1-10 how strongly they feel

Return ONLY a JSON array of 5 persona objects. No other text.

IMPORTANT:
- Make names and backgrounds PLAUSIBLE for this city
- Reference specific local features (road names, schools, neighborhoods) when possible
- Each resident must have a UNIQUE primary concern
- Vary speaking styles dramatically`

// ErrBadCast indicates the model's persona response could not be used.
var ErrBadCast = errors.New("unusable persona response")

// Generator produces a hearing cast from the model, falling back to the
// default cast whenever generation fails, times out or parses badly. A
// Generator never leaves the caller without personas.
type Generator struct {
	model           model.Model
	logger          logging.Logger
	timeout         time.Duration
	researchTimeout time.Duration
}

// GeneratorOptions configure a Generator.
type GeneratorOptions struct {
	// Timeout bounds the persona generation call.
	Timeout time.Duration
	// ResearchTimeout bounds the optional city research call.
	ResearchTimeout time.Duration
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// NewGenerator constructs a persona Generator. A nil model skips generation
// entirely and always serves the default cast.
func NewGenerator(m model.Model, optFns ...func(o *GeneratorOptions)) *Generator {
	opts := GeneratorOptions{
		Timeout:         60 * time.Second,
		ResearchTimeout: 50 * time.Second,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{
		model:           m,
		logger:          opts.Logger,
		timeout:         opts.Timeout,
		researchTimeout: opts.ResearchTimeout,
	}
}

// Generate returns the cast for a hearing. On any generation failure the
// default cast is returned, and a council member is appended when the
// generated cast lacks one, so the result is always runnable.
func (g *Generator) Generate(ctx context.Context, input core.SimulationInput) []core.Persona {
	if g.model == nil {
		return DefaultCast(input)
	}

	notes := g.research(ctx, input)

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := completion(genCtx, g.model, model.Request{
		Messages:  []model.Message{{Role: "user", Text: g.buildPrompt(input, notes)}},
		MaxTokens: 4096,
	})
	if err != nil {
		g.logger.Warn("persona generation failed, using default cast", "error", err)
		return DefaultCast(input)
	}

	personas, err := ParseCast(text, input)
	if err != nil {
		g.logger.Warn("persona response unusable, using default cast", "error", err)
		return DefaultCast(input)
	}

	if core.FirstByRole(personas, core.RoleCouncilMember) == nil {
		personas = append(personas, DefaultCouncilMember(input))
	}
	g.logger.Info("personas generated", "count", len(personas))
	return personas
}

func (g *Generator) buildPrompt(input core.SimulationInput, researchNotes string) string {
	concerns := "general community impact"
	if len(input.Concerns) > 0 {
		concerns = strings.Join(input.Concerns, ", ")
	}
	notes := ""
	if researchNotes != "" {
		notes = "\nCITY RESEARCH NOTES:\n" + researchNotes + "\n"
	}
	return fmt.Sprintf(generationPrompt, input.CityContext(), input.ProposalDetails, concerns, notes)
}

// personaPayload is the wire shape of one generated persona.
type personaPayload struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Role              string   `json:"role"`
	Archetype         string   `json:"archetype"`
	Age               int      `json:"age"`
	Occupation        string   `json:"occupation"`
	Background        string   `json:"background"`
	SpeakingStyle     string   `json:"speaking_style"`
	PrimaryConcern    string   `json:"primary_concern"`
	SecondaryConcerns []string `json:"secondary_concerns"`
	Intensity         int      `json:"intensity"`
}

var validRoles = map[core.Role]bool{
	core.RoleModerator:     true,
	core.RolePetitioner:    true,
	core.RoleResident:      true,
	core.RoleCouncilMember: true,
}

var validArchetypes = map[core.Archetype]bool{
	core.ArchetypeConcernedParent:       true,
	core.ArchetypeEnvironmentalActivist: true,
	core.ArchetypePropertyOwner:         true,
	core.ArchetypeLocalBusinessOwner:    true,
	core.ArchetypeFiscalConservative:    true,
	core.ArchetypeLongtimeResident:      true,
}

// ParseCast extracts the persona array from raw model output and finishes
// each persona with its color and system prompt. Responses with fewer than
// three usable personas fail with ErrBadCast.
func ParseCast(text string, input core.SimulationInput) ([]core.Persona, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array", ErrBadCast)
	}

	var payloads []personaPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payloads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCast, err)
	}
	if len(payloads) < 3 {
		return nil, fmt.Errorf("%w: only %d personas", ErrBadCast, len(payloads))
	}

	personas := make([]core.Persona, 0, len(payloads))
	residentIdx := 0
	for i, pl := range payloads {
		role := core.Role(pl.Role)
		if !validRoles[role] {
			role = core.RoleResident
		}
		archetype := core.Archetype(pl.Archetype)
		if !validArchetypes[archetype] {
			archetype = ""
		}

		p := core.Persona{
			ID:                pl.ID,
			Name:              pl.Name,
			Role:              role,
			Archetype:         archetype,
			Age:               pl.Age,
			Occupation:        pl.Occupation,
			Background:        pl.Background,
			SpeakingStyle:     pl.SpeakingStyle,
			PrimaryConcern:    pl.PrimaryConcern,
			SecondaryConcerns: pl.SecondaryConcerns,
			Intensity:         pl.Intensity,
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("persona-%d", i)
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Persona %d", i)
		}
		if p.Intensity == 0 {
			p.Intensity = 6
		}

		finishPersona(&p, residentIdx, input)
		if p.Role == core.RoleResident {
			residentIdx++
		}
		personas = append(personas, p)
	}
	return personas, nil
}

// completion drains a non-streaming model call down to its final text.
func completion(ctx context.Context, m model.Model, req model.Request) (string, error) {
	respCh, errCh := m.Generate(ctx, req)
	var text string
	var sawFinal bool
	for resp := range respCh {
		if !resp.Partial {
			text = resp.Text
			sawFinal = true
		}
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	if !sawFinal {
		return "", errors.New("model produced no final response")
	}
	return text, nil
}
