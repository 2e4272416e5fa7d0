package core

// Role identifies a persona's function in the hearing. Moderator, petitioner
// and council member appear at most once per session; residents are 0..N.
type Role string

const (
	RoleModerator     Role = "moderator"
	RolePetitioner    Role = "petitioner"
	RoleResident      Role = "resident"
	RoleCouncilMember Role = "council_member"
)

// Archetype tags a resident persona with a recognizable community profile.
// Optional; used only for display and prompt color.
type Archetype string

const (
	ArchetypeConcernedParent       Archetype = "concerned_parent"
	ArchetypeEnvironmentalActivist Archetype = "environmental_activist"
	ArchetypePropertyOwner         Archetype = "property_owner"
	ArchetypeLocalBusinessOwner    Archetype = "local_business_owner"
	ArchetypeFiscalConservative    Archetype = "fiscal_conservative"
	ArchetypeLongtimeResident      Archetype = "longtime_resident"
)

// Persona is a synthetic hearing participant. Immutable once generated for a
// session; SystemPrompt is the precomputed instruction payload supplied to the
// model on every one of the persona's turns.
type Persona struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Role              Role      `json:"role"`
	Archetype         Archetype `json:"archetype,omitempty"`
	Age               int       `json:"age,omitempty"`
	Occupation        string    `json:"occupation,omitempty"`
	Background        string    `json:"background,omitempty"`
	SpeakingStyle     string    `json:"speaking_style,omitempty"`
	PrimaryConcern    string    `json:"primary_concern,omitempty"`
	SecondaryConcerns []string  `json:"secondary_concerns,omitempty"`
	Intensity         int       `json:"intensity,omitempty"`
	SystemPrompt      string    `json:"-"`
	Color             string    `json:"color,omitempty"`
}

// FirstByRole returns the first persona with the given role, or nil.
func FirstByRole(personas []Persona, role Role) *Persona {
	for i := range personas {
		if personas[i].Role == role {
			return &personas[i]
		}
	}
	return nil
}

// AllByRole returns every persona with the given role in generation order.
func AllByRole(personas []Persona, role Role) []Persona {
	var out []Persona
	for _, p := range personas {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}
