// Package debate implements the debate session core: difficulty profiles,
// prompt construction, the AI gateway, the evaluation parser, the turn
// orchestrator and the session store.
package debate

// Role discriminates who produced an argument entry. Human entries carry the
// participant's name; the AI roles map to fixed display identities.
type Role string

const (
	RoleHuman   Role = "human"
	RoleAIReply Role = "ai_reply"
	RoleAIJudge Role = "ai_judge"
	RoleAIFinal Role = "ai_final"
)

// Fixed display identities for the synthetic speakers. These are part of the
// wire format the frontend renders, so they never change.
const (
	AIAssistantName      = "AI Assistant"
	AIJudgeName          = "AI Judge"
	AIFinalEvaluatorName = "AI Final Evaluator"
)

// Speaker is a closed tagged speaker identity: a human participant by name,
// or one of the synthetic AI identities.
type Speaker struct {
	Role Role
	Name string // set only for RoleHuman
}

func Human(name string) Speaker { return Speaker{Role: RoleHuman, Name: name} }

func AIReply() Speaker { return Speaker{Role: RoleAIReply} }
func AIJudge() Speaker { return Speaker{Role: RoleAIJudge} }
func AIFinal() Speaker { return Speaker{Role: RoleAIFinal} }

// Display returns the identity shown to clients.
func (s Speaker) Display() string {
	switch s.Role {
	case RoleAIReply:
		return AIAssistantName
	case RoleAIJudge:
		return AIJudgeName
	case RoleAIFinal:
		return AIFinalEvaluatorName
	default:
		return s.Name
	}
}

// IsHuman reports whether the speaker is a human participant.
func (s Speaker) IsHuman() bool { return s.Role == RoleHuman }
