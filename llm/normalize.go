package llm

import (
	"google.golang.org/genai"

	"github.com/jchen2215/promptforge/domain"
)

// The store persists the assistant role while the Gemini wire format calls the
// same role "model". The mapping is symmetric: roles other than assistant pass
// through unchanged, and the wire role "model" always comes back as assistant.

// WireRole maps a stored role to the role name the LLM call expects.
func WireRole(role string) string {
	if role == domain.RoleAssistant {
		return string(genai.RoleModel)
	}
	return role
}

// StoredRole maps a wire role back to its stored form.
func StoredRole(role string) string {
	if role == string(genai.RoleModel) {
		return domain.RoleAssistant
	}
	return role
}

// Contents converts stored turns into the content sequence for a generate
// call, carrying each turn's content string as its sole part.
func Contents(history []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Content, genai.Role(WireRole(t.Role))))
	}
	return contents
}
