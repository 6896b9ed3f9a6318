package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"pm-launchpad/internal/domain"
)

type charterPayload struct {
	ProjectName     *string   `json:"projectName"`
	BusinessNeed    *string   `json:"businessNeed"`
	Objectives      *[]string `json:"objectives"`
	Scope           *[]string `json:"scope"`
	SuccessCriteria *[]string `json:"successCriteria"`
	Risks           *[]string `json:"risks"`
	Assumptions     *[]string `json:"assumptions"`
	Constraints     *[]string `json:"constraints"`
}

type stakeholderPayload struct {
	Stakeholders *[]stakeholderEntry `json:"stakeholders"`
}

type stakeholderEntry struct {
	ID           *string `json:"id"`
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	Interest     *int    `json:"interest"`
	Influence    *int    `json:"influence"`
	Category     *string `json:"category"`
	Expectations *string `json:"expectations"`
	Strategy     *string `json:"strategy"`
}

// decodeStrict decodes exactly one JSON value into out, rejecting unknown
// fields and trailing data.
func decodeStrict(raw string, out any) error {
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("decode: multiple JSON values")
		}
		return fmt.Errorf("decode trailing data: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func parseCharter(raw string) (domain.ProjectCharter, error) {
	var p charterPayload
	if err := decodeStrict(raw, &p); err != nil {
		return domain.ProjectCharter{}, err
	}
	var missing []string
	requireString := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return strings.TrimSpace(*v)
	}
	requireList := func(name string, v *[]string) []string {
		if v == nil {
			missing = append(missing, name)
			return nil
		}
		return cleanList(*v)
	}
	c := domain.ProjectCharter{
		ProjectName:     requireString("projectName", p.ProjectName),
		BusinessNeed:    requireString("businessNeed", p.BusinessNeed),
		Objectives:      requireList("objectives", p.Objectives),
		Scope:           requireList("scope", p.Scope),
		SuccessCriteria: requireList("successCriteria", p.SuccessCriteria),
		Risks:           requireList("risks", p.Risks),
		Assumptions:     requireList("assumptions", p.Assumptions),
		Constraints:     requireList("constraints", p.Constraints),
	}
	if len(missing) > 0 {
		return domain.ProjectCharter{}, fmt.Errorf("charter missing fields: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func validateCharter(c domain.ProjectCharter) error {
	if c.ProjectName == "" {
		return errors.New("charter has an empty project name")
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseStakeholders(raw string) ([]domain.Stakeholder, error) {
	var p stakeholderPayload
	if err := decodeStrict(raw, &p); err != nil {
		return nil, err
	}
	if p.Stakeholders == nil {
		return nil, errors.New("register missing field stakeholders")
	}
	out := make([]domain.Stakeholder, 0, len(*p.Stakeholders))
	for i, e := range *p.Stakeholders {
		switch {
		case e.Name == nil:
			return nil, fmt.Errorf("stakeholders[%d] missing field name", i)
		case e.Interest == nil:
			return nil, fmt.Errorf("stakeholders[%d] missing field interest", i)
		case e.Influence == nil:
			return nil, fmt.Errorf("stakeholders[%d] missing field influence", i)
		case e.Category == nil:
			return nil, fmt.Errorf("stakeholders[%d] missing field category", i)
		}
		out = append(out, domain.Stakeholder{
			ID:           deref(e.ID),
			Name:         deref(e.Name),
			Role:         deref(e.Role),
			Interest:     *e.Interest,
			Influence:    *e.Influence,
			Category:     domain.Category(deref(e.Category)),
			Expectations: deref(e.Expectations),
			Strategy:     deref(e.Strategy),
		})
	}
	return out, nil
}

// validateStakeholders rejects the whole register if any entry is out of
// range, and assigns IDs to entries that have none.
func validateStakeholders(list []domain.Stakeholder) error {
	seen := make(map[string]int, len(list))
	for i := range list {
		s := &list[i]
		if s.Name == "" {
			return fmt.Errorf("stakeholders[%d] has an empty name", i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stakeholders[%d]: %w", i, err)
		}
		if s.ID == "" {
			s.ID = newUUID()
		}
		if prev, dup := seen[s.ID]; dup {
			return fmt.Errorf("stakeholders[%d] repeats id %q of stakeholders[%d]", i, s.ID, prev)
		}
		seen[s.ID] = i
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
