package advisor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pm-launchpad/internal/domain"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts is the system-prompt catalogue: one persona per chat module and one
// instruction per generation operation.
type Prompts struct {
	Personas struct {
		Initiation   string `yaml:"initiation"`
		Stakeholders string `yaml:"stakeholders"`
	} `yaml:"personas"`
	Generation struct {
		Charter      string `yaml:"charter"`
		Stakeholders string `yaml:"stakeholders"`
	} `yaml:"generation"`
}

// DefaultPrompts returns the embedded catalogue.
func DefaultPrompts() (*Prompts, error) {
	return parsePrompts(defaultPrompts)
}

// LoadPrompts reads a catalogue from path, or the embedded one when path is empty.
func LoadPrompts(path string) (*Prompts, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPrompts()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("advisor: read prompts: %w", err)
	}
	return parsePrompts(raw)
}

func parsePrompts(raw []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("advisor: decode prompts: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Prompts) validate() error {
	var missing []string
	for name, v := range map[string]string{
		"personas.initiation":     p.Personas.Initiation,
		"personas.stakeholders":   p.Personas.Stakeholders,
		"generation.charter":      p.Generation.Charter,
		"generation.stakeholders": p.Generation.Stakeholders,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.New("advisor: prompts missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Persona returns the chat system prompt for m.
func (p *Prompts) Persona(m domain.Module) string {
	if m == domain.ModuleStakeholderAnalysis {
		return strings.TrimSpace(p.Personas.Stakeholders)
	}
	return strings.TrimSpace(p.Personas.Initiation)
}

func transcriptMessage(transcript string) domain.PromptMessage {
	return domain.PromptMessage{
		Role:    domain.RoleUser,
		Content: "Consultation transcript:\n\n" + transcript,
	}
}
