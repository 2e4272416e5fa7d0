package persona

import "github.com/civiclab/councilsim/core"

// roleColors assigns the fixed display color for single-occurrence roles.
var roleColors = map[core.Role]string{
	core.RoleModerator:     "#6366f1",
	core.RolePetitioner:    "#22c55e",
	core.RoleCouncilMember: "#3b82f6",
}

// residentColors cycle across residents in generation order.
var residentColors = []string{"#ef4444", "#f59e0b", "#a855f7", "#ec4899"}

// DefaultCast returns the fallback hearing cast: moderator, petitioner,
// three residents with distinct archetypes, and a council member. Used
// whenever model-backed generation fails or is unavailable, so a simulation
// can always run.
func DefaultCast(input core.SimulationInput) []core.Persona {
	city := input.CityContext()

	personas := []core.Persona{
		{
			ID:             "moderator",
			Name:           "Chairperson Williams",
			Role:           core.RoleModerator,
			Age:            58,
			Occupation:     "City Council Chairperson",
			Background:     "Long-serving council chair in " + city + ". Known for running tight, fair meetings.",
			SpeakingStyle:  "Formal, procedural, neutral",
			PrimaryConcern: "Maintaining an orderly and fair public hearing",
		},
		{
			ID:             "petitioner",
			Name:           "David Chen",
			Role:           core.RolePetitioner,
			Age:            42,
			Occupation:     "Vice President of Development",
			Background:     "Stanford-educated engineer turned development executive. Has overseen data center projects in three states. Genuinely believes in community partnership.",
			SpeakingStyle:  "Professional, data-driven, empathetic",
			PrimaryConcern: "Securing approval for the data center proposal",
		},
		{
			ID:                "resident-1",
			Name:              "Sarah Mitchell",
			Role:              core.RoleResident,
			Archetype:         core.ArchetypeConcernedParent,
			Age:               38,
			Occupation:        "elementary school teacher",
			Background:        "Third-generation " + city + " resident. Teaches 3rd grade at the elementary school half a mile from the proposed site. Mother of two young children who attend the same school.",
			SpeakingStyle:     "Emotional and personal. References her children frequently. Gets visibly frustrated when she feels dismissed. Speaks from the heart, not from notes.",
			PrimaryConcern:    "increased truck traffic and construction noise near the elementary school where her children attend and she teaches",
			SecondaryConcerns: []string{"air quality during construction", "setting a precedent for more industrial development"},
			Intensity:         8,
		},
		{
			ID:                "resident-2",
			Name:              "Dr. Robert Okafor",
			Role:              core.RoleResident,
			Archetype:         core.ArchetypeEnvironmentalActivist,
			Age:               62,
			Occupation:        "retired environmental science professor",
			Background:        "Retired from the state university after 30 years of teaching. Serves on " + city + "'s environmental advisory board. Has published research on regional water systems.",
			SpeakingStyle:     "Data-heavy and measured. Cites specific studies and statistics. Becomes passionate when discussing water resources. Tries to remain scientific but cares deeply.",
			PrimaryConcern:    "water consumption from the data center depleting the local aquifer that supplies the entire region",
			SecondaryConcerns: []string{"power grid strain", "carbon footprint", "lack of environmental impact study"},
			Intensity:         7,
		},
		{
			ID:                "resident-3",
			Name:              "Linda Kowalski",
			Role:              core.RoleResident,
			Archetype:         core.ArchetypePropertyOwner,
			Age:               55,
			Occupation:        "real estate agent and homeowner of 22 years",
			Background:        "Has lived in " + city + " for over two decades. Works as a real estate agent and has watched property values closely. Her home is her largest financial asset and her retirement plan.",
			SpeakingStyle:     "Financially focused and direct. References specific dollar amounts and property values. Can be confrontational when she feels her investment is threatened. No-nonsense.",
			PrimaryConcern:    "property values declining 10-15% based on comparable data center locations, threatening her retirement savings",
			SecondaryConcerns: []string{"24/7 operational noise", "light pollution from industrial lighting"},
			Intensity:         8,
		},
		DefaultCouncilMember(input),
	}

	residentIdx := 0
	for i := range personas {
		finishPersona(&personas[i], residentIdx, input)
		if personas[i].Role == core.RoleResident {
			residentIdx++
		}
	}
	return personas
}

// DefaultCouncilMember returns the stock council questioner. Every cast gets
// a council member even when generation produced none, otherwise the
// question-and-answer phase would have no questioner.
func DefaultCouncilMember(input core.SimulationInput) core.Persona {
	city := input.CityContext()
	p := core.Persona{
		ID:         "council-member",
		Name:       "Council Member Patricia Hayes",
		Role:       core.RoleCouncilMember,
		Age:        52,
		Occupation: "City Council Member, District 3",
		Background: "Former small business owner in " + city + " who ran for council on a " +
			"platform of smart growth. Known for asking tough questions of developers. " +
			"Has voted both for and against development projects.",
		SpeakingStyle:  "Direct and probing. Asks specific questions and pushes for concrete answers.",
		PrimaryConcern: "Ensuring any development benefits the community and doesn't burden existing residents",
	}
	finishPersona(&p, 0, input)
	return p
}

// finishPersona assigns the display color and system prompt. residentIdx
// feeds the resident color cycle; non-resident roles ignore it.
func finishPersona(p *core.Persona, residentIdx int, input core.SimulationInput) {
	if color, ok := roleColors[p.Role]; ok {
		p.Color = color
	} else {
		p.Color = residentColors[residentIdx%len(residentColors)]
	}
	p.SystemPrompt = BuildSystemPrompt(*p, input.CityContext(), input.ProposalDetails, input.CompanyName)
}
