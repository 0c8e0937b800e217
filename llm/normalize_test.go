package llm

import (
	"testing"
	"time"

	"github.com/jchen2215/promptforge/domain"
)

func TestRoleMappingSymmetry(t *testing.T) {
	tests := []struct {
		stored string
		wire   string
	}{
		{domain.RoleAssistant, "model"},
		{domain.RoleUser, "user"},
		{domain.RoleSystem, "system"},
	}
	for _, tt := range tests {
		if got := WireRole(tt.stored); got != tt.wire {
			t.Fatalf("WireRole(%q) = %q, want %q", tt.stored, got, tt.wire)
		}
		if got := StoredRole(WireRole(tt.stored)); got != tt.stored {
			t.Fatalf("round trip of %q yielded %q", tt.stored, got)
		}
	}

	// The wire role "model" always comes back as assistant; a store never
	// sees "model".
	if got := StoredRole("model"); got != domain.RoleAssistant {
		t.Fatalf("StoredRole(model) = %q, want assistant", got)
	}
}

func TestContents(t *testing.T) {
	history := []domain.Turn{
		{ID: "t1", Role: domain.RoleUser, Content: "build me a prompt", CreatedAt: time.Now()},
		{ID: "t2", Role: domain.RoleAssistant, Content: `{"status":"collecting"}`, CreatedAt: time.Now()},
	}

	contents := Contents(history)
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if string(contents[0].Role) != "user" || string(contents[1].Role) != "model" {
		t.Fatalf("unexpected roles: %q, %q", contents[0].Role, contents[1].Role)
	}
	if contents[0].Parts[0].Text != "build me a prompt" {
		t.Fatalf("unexpected content: %q", contents[0].Parts[0].Text)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Marketing Email Prompt", "Marketing Email Prompt"},
		{`"Launch Email!" - draft, v2`, "Launch Email draft v2"},
		{"one two three four five six", "one two three four"},
		{"", DefaultGeneratedTitle},
		{"!!! ???", DefaultGeneratedTitle},
	}
	for _, tt := range tests {
		if got := CleanTitle(tt.in); got != tt.want {
			t.Fatalf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
