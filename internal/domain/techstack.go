package domain

import (
	"encoding/json"
	"strings"
)

// TechStack is the decoded form of the techStack blob attached to an
// escalation. It is either ParsedTechStack or UnparsedTechStack.
type TechStack interface {
	isTechStack()
	// Summary is a short human-readable rendering for list views.
	Summary() string
}

// ParsedTechStack is a techStack blob that decoded as a JSON object.
type ParsedTechStack struct {
	Framework string `json:"framework"`
	POS       string `json:"pos"`
}

// UnparsedTechStack keeps a blob that was not a JSON object.
type UnparsedTechStack struct {
	Raw string
}

func (ParsedTechStack) isTechStack()   {}
func (UnparsedTechStack) isTechStack() {}

func (p ParsedTechStack) Summary() string {
	parts := make([]string, 0, 2)
	if p.Framework != "" {
		parts = append(parts, p.Framework)
	}
	if p.POS != "" && p.POS != "none" {
		parts = append(parts, p.POS)
	}
	return strings.Join(parts, " / ")
}

func (u UnparsedTechStack) Summary() string { return u.Raw }

// ParseTechStack decodes raw. A nil pointer yields nil; anything that is not
// a JSON object yields UnparsedTechStack with the original text.
func ParseTechStack(raw *string) TechStack {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if !strings.HasPrefix(s, "{") {
		return UnparsedTechStack{Raw: *raw}
	}
	var p ParsedTechStack
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return UnparsedTechStack{Raw: *raw}
	}
	return p
}
