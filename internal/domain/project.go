package domain

import (
	"fmt"
	"strings"
)

// View is the panel currently displayed.
type View string

const (
	ViewChat         View = "CHAT"
	ViewCharter      View = "CHARTER"
	ViewStakeholders View = "STAKEHOLDERS"
)

// Module selects the conversational persona used in the chat view.
type Module string

const (
	ModuleInitiation          Module = "INITIATION"
	ModuleStakeholderAnalysis Module = "STAKEHOLDERS"
)

// Title is the navigation label of the module.
func (m Module) Title() string {
	if m == ModuleStakeholderAnalysis {
		return "Stakeholder Analysis"
	}
	return "Project Initiation"
}

// Heading is the chat view heading of the module.
func (m Module) Heading() string {
	if m == ModuleStakeholderAnalysis {
		return "Stakeholder Discovery"
	}
	return "Strategic Initiation"
}

// ParseModule accepts the wire names used by the HTTP surface. An empty string
// maps to the initiation module.
func ParseModule(s string) (Module, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ModuleInitiation):
		return ModuleInitiation, nil
	case string(ModuleStakeholderAnalysis), "STAKEHOLDER_ANALYSIS":
		return ModuleStakeholderAnalysis, nil
	default:
		return "", fmt.Errorf("domain: unknown module %q", s)
	}
}

// ProjectState is the aggregate root of a session.
type ProjectState struct {
	CurrentCharter *ProjectCharter
	Stakeholders   []Stakeholder
	Messages       []ChatMessage
}

// Clone returns a deep copy of p so readers never alias the live state.
func (p ProjectState) Clone() ProjectState {
	out := ProjectState{}
	if p.CurrentCharter != nil {
		c := p.CurrentCharter.Clone()
		out.CurrentCharter = &c
	}
	if p.Stakeholders != nil {
		out.Stakeholders = make([]Stakeholder, len(p.Stakeholders))
		copy(out.Stakeholders, p.Stakeholders)
	}
	if p.Messages != nil {
		out.Messages = make([]ChatMessage, len(p.Messages))
		copy(out.Messages, p.Messages)
	}
	return out
}

// HasCharter reports whether a charter has been generated.
func (p ProjectState) HasCharter() bool {
	return p.CurrentCharter != nil
}

// HasStakeholders reports whether a non-empty register has been generated.
func (p ProjectState) HasStakeholders() bool {
	return len(p.Stakeholders) > 0
}
