package persona

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
)

func testInput() core.SimulationInput {
	return core.SimulationInput{
		CityName:        "Cedar Falls",
		State:           "IA",
		CompanyName:     "Meridian Compute",
		ProposalDetails: "A 200MW data center campus on the north side industrial corridor.",
		Concerns:        []string{"water usage", "noise"},
	}
}

func TestDefaultCast(t *testing.T) {
	cast := DefaultCast(testInput())

	require.Len(t, cast, 6)
	require.NotNil(t, core.FirstByRole(cast, core.RoleModerator))
	require.NotNil(t, core.FirstByRole(cast, core.RolePetitioner))
	require.NotNil(t, core.FirstByRole(cast, core.RoleCouncilMember))
	assert.Len(t, core.AllByRole(cast, core.RoleResident), 3)

	// Residents get distinct cycle colors, fixed roles get fixed colors.
	residents := core.AllByRole(cast, core.RoleResident)
	assert.Equal(t, residentColors[0], residents[0].Color)
	assert.Equal(t, residentColors[1], residents[1].Color)
	assert.Equal(t, residentColors[2], residents[2].Color)
	assert.Equal(t, roleColors[core.RoleModerator], core.FirstByRole(cast, core.RoleModerator).Color)

	for _, p := range cast {
		assert.NotEmpty(t, p.SystemPrompt, "persona %s has no system prompt", p.ID)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	input := testInput()

	t.Run("moderator stays neutral", func(t *testing.T) {
		p := core.Persona{Name: "Chairperson Williams", Role: core.RoleModerator}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, input.CompanyName)
		assert.Contains(t, prompt, "Chairperson Williams")
		assert.Contains(t, prompt, "Cedar Falls, IA")
		assert.Contains(t, prompt, "NEUTRAL")
	})

	t.Run("petitioner carries company and proposal", func(t *testing.T) {
		p := core.Persona{Name: "David Chen", Role: core.RolePetitioner, Occupation: "VP of Development"}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, input.CompanyName)
		assert.Contains(t, prompt, "Meridian Compute")
		assert.Contains(t, prompt, "200MW data center campus")
	})

	t.Run("petitioner company fallback", func(t *testing.T) {
		p := core.Persona{Name: "David Chen", Role: core.RolePetitioner}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, "")
		assert.Contains(t, prompt, "the development company")
	})

	t.Run("resident carries concerns and intensity", func(t *testing.T) {
		p := core.Persona{
			Name:              "Sarah Mitchell",
			Role:              core.RoleResident,
			Age:               38,
			Occupation:        "teacher",
			PrimaryConcern:    "truck traffic near the school",
			SecondaryConcerns: []string{"air quality", "noise"},
			Intensity:         8,
		}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, input.CompanyName)
		assert.Contains(t, prompt, "truck traffic near the school")
		assert.Contains(t, prompt, "air quality, noise")
		assert.Contains(t, prompt, "8/10")
	})

	t.Run("resident secondary concerns fallback", func(t *testing.T) {
		p := core.Persona{Name: "Sam", Role: core.RoleResident}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, "")
		assert.Contains(t, prompt, "general community impact")
	})

	t.Run("council member probes both sides", func(t *testing.T) {
		p := core.Persona{Name: "Patricia Hayes", Role: core.RoleCouncilMember, Background: "Former business owner."}
		prompt := BuildSystemPrompt(p, input.CityContext(), input.ProposalDetails, "")
		assert.Contains(t, prompt, "BOTH sides")
		assert.Contains(t, prompt, "Former business owner.")
	})
}

func TestParseCast(t *testing.T) {
	text := `Here are your personas:

[
  {"id": "moderator", "name": "Chairperson Ruth Vance", "role": "moderator", "age": 61, "occupation": "Council Chair"},
  {"id": "petitioner", "name": "Alan Reyes", "role": "petitioner", "age": 45, "occupation": "Development Director"},
  {"id": "resident-1", "name": "Megan Holt", "role": "resident", "archetype": "concerned_parent", "age": 36, "occupation": "nurse", "primary_concern": "truck traffic", "intensity": 8},
  {"id": "resident-2", "name": "Tom Abara", "role": "resident", "archetype": "environmental_activist", "age": 58, "occupation": "farmer", "primary_concern": "aquifer", "intensity": 7}
]`

	cast, err := ParseCast(text, testInput())
	require.NoError(t, err)
	require.Len(t, cast, 4)

	assert.Equal(t, core.RoleModerator, cast[0].Role)
	assert.Equal(t, core.ArchetypeConcernedParent, cast[2].Archetype)
	assert.Equal(t, residentColors[0], cast[2].Color)
	assert.Equal(t, residentColors[1], cast[3].Color)
	for _, p := range cast {
		assert.NotEmpty(t, p.SystemPrompt)
	}
}

func TestParseCast_RepairsBadFields(t *testing.T) {
	text := `[
  {"name": "A", "role": "mayor"},
  {"id": "p", "name": "B", "role": "petitioner"},
  {"id": "r", "role": "resident", "archetype": "martian"}
]`

	cast, err := ParseCast(text, testInput())
	require.NoError(t, err)
	require.Len(t, cast, 3)

	// Unknown role falls back to resident, unknown archetype is dropped.
	assert.Equal(t, core.RoleResident, cast[0].Role)
	assert.Equal(t, core.Archetype(""), cast[2].Archetype)
	assert.Equal(t, "persona-0", cast[0].ID)
	assert.Equal(t, "Persona 2", cast[2].Name)
	assert.Equal(t, 6, cast[2].Intensity)
}

func TestParseCast_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no array", "I cannot do that."},
		{"malformed", `[{"name": "A"`},
		{"too few", `[{"name": "A", "role": "moderator"}, {"name": "B", "role": "petitioner"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCast(tt.text, testInput())
			require.ErrorIs(t, err, ErrBadCast)
		})
	}
}

func TestGenerator_UsesModelCast(t *testing.T) {
	m := model.NewMockModel("caster")
	m.AddResponse("Summarize what you know", "Cedar Falls sits on the Cedar River. Main employer is the university.")
	m.AddResponse("create realistic personas", `[
  {"id": "moderator", "name": "Chairperson Ruth Vance", "role": "moderator"},
  {"id": "petitioner", "name": "Alan Reyes", "role": "petitioner"},
  {"id": "resident-1", "name": "Megan Holt", "role": "resident", "archetype": "concerned_parent"},
  {"id": "resident-2", "name": "Tom Abara", "role": "resident", "archetype": "environmental_activist"},
  {"id": "resident-3", "name": "Rita Sloan", "role": "resident", "archetype": "property_owner"}
]`)

	cast := NewGenerator(m).Generate(context.Background(), testInput())

	require.Len(t, cast, 6)
	assert.Equal(t, "Chairperson Ruth Vance", cast[0].Name)
	// Generated cast lacked a council member, so the default one is appended.
	council := core.FirstByRole(cast, core.RoleCouncilMember)
	require.NotNil(t, council)
	assert.Equal(t, "Council Member Patricia Hayes", council.Name)
}

func TestGenerator_ResearchNotesReachPrompt(t *testing.T) {
	notes := "Cedar Falls sits on the Cedar River."
	g := NewGenerator(model.NewMockModel("caster"))

	prompt := g.buildPrompt(testInput(), notes)
	assert.Contains(t, prompt, "CITY RESEARCH NOTES:")
	assert.Contains(t, prompt, notes)
	assert.Contains(t, prompt, "water usage, noise")

	bare := g.buildPrompt(testInput(), "")
	assert.False(t, strings.Contains(bare, "CITY RESEARCH NOTES:"))
}

func TestGenerator_FallsBackOnModelFailure(t *testing.T) {
	m := model.NewMockModel("caster")
	m.Err = assert.AnError

	cast := NewGenerator(m).Generate(context.Background(), testInput())

	require.Len(t, cast, 6)
	assert.Equal(t, "Chairperson Williams", cast[0].Name)
}

func TestGenerator_FallsBackOnUnusableResponse(t *testing.T) {
	m := model.NewMockModel("caster")
	m.AddResponse("create realistic personas", "I am unable to produce JSON today.")

	cast := NewGenerator(m).Generate(context.Background(), testInput())

	require.Len(t, cast, 6)
	assert.Equal(t, "Chairperson Williams", cast[0].Name)
}

func TestGenerator_NilModelServesDefaults(t *testing.T) {
	cast := NewGenerator(nil).Generate(context.Background(), testInput())
	require.Len(t, cast, 6)
	assert.Equal(t, "David Chen", cast[1].Name)
}
