package transcript

import "github.com/civiclab/councilsim/core"

// PhaseDescriptions maps each phase to its display heading.
var PhaseDescriptions = map[core.Phase]string{
	core.PhaseOpening:       "Opening Statements",
	core.PhasePublicComment: "Public Comment Period",
	core.PhaseRebuttal:      "Petitioner Rebuttal",
	core.PhaseCouncilQA:     "Council Questions & Answers",
	core.PhaseDeliberation:  "Deliberation & Vote",
}

// PhaseAnnouncements maps each phase to the moderator-style line broadcast
// when the phase begins.
var PhaseAnnouncements = map[core.Phase]string{
	core.PhaseOpening:       "The meeting is called to order",
	core.PhasePublicComment: "The floor is open for public comment",
	core.PhaseRebuttal:      "The petitioner may now respond to public comments",
	core.PhaseCouncilQA:     "Council members may now ask questions",
	core.PhaseDeliberation:  "The council will now deliberate",
}

// phaseInstructions holds the per-(phase, role) behavioral instruction
// appended to a speaker's context. Many pairs intentionally have none.
var phaseInstructions = map[core.Phase]map[core.Role]string{
	core.PhaseOpening: {
		core.RoleModerator:  "Open the meeting. State the agenda: a public hearing on the proposed data center. Introduce the format: petitioner presentation, public comment, rebuttal, council questions, and deliberation. Be brief and procedural.",
		core.RolePetitioner: "Present your proposal to the council and residents. Cover: what you're proposing, key benefits (jobs, tax revenue), and your commitment to the community. Be compelling but concise. This is your opening — make it count.",
	},
	core.PhasePublicComment: {
		core.RoleResident: "This is your chance to address the council. Speak your concern clearly and personally. Reference your life in this city. Be specific — vague complaints are easy to dismiss. You have 3-5 sentences.",
	},
	core.PhaseRebuttal: {
		core.RolePetitioner: "Address the specific concerns raised by the residents. Respond to each person's points with data and concrete commitments. Be empathetic — acknowledge their feelings while providing factual rebuttals. Don't be defensive.",
	},
	core.PhaseCouncilQA: {
		core.RoleCouncilMember: "Ask pointed questions that the residents would want answered. Push for specifics — numbers, timelines, guarantees. Challenge vague promises. You represent all constituents.",
		core.RolePetitioner:    "Answer the council member's questions directly and specifically. If you don't know something, say so. Offer to provide additional documentation or studies.",
	},
	core.PhaseDeliberation: {
		core.RoleModerator:     "Summarize the key points raised during the hearing. Note the strongest arguments from both sides. Do NOT give your personal opinion — summarize fairly.",
		core.RoleCouncilMember: "State your assessment based on what you've heard. What concerns remain unaddressed? What commitments do you want formalized? Give your advisory recommendation — approve, deny, or table with conditions.",
	},
}

// InstructionFor returns the behavioral instruction for a (phase, role) pair,
// or "" when the pair has none.
func InstructionFor(phase core.Phase, role core.Role) string {
	return phaseInstructions[phase][role]
}
