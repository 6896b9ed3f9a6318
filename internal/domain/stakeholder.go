package domain

import "fmt"

const (
	MinScore = 1
	MaxScore = 10

	// quadrantThreshold splits the 1-10 scale into low (<=5) and high (>5).
	quadrantThreshold = 5
)

// Category places a stakeholder inside or outside the performing organisation.
type Category string

const (
	CategoryInternal Category = "Internal"
	CategoryExternal Category = "External"
)

func (c Category) Valid() bool {
	return c == CategoryInternal || c == CategoryExternal
}

// Stakeholder is one entry of the stakeholder register.
type Stakeholder struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Interest     int      `json:"interest"`
	Influence    int      `json:"influence"`
	Category     Category `json:"category"`
	Expectations string   `json:"expectations"`
	Strategy     string   `json:"strategy"`
}

// Validate checks the domain constraints of a single register entry.
func (s Stakeholder) Validate() error {
	if s.Interest < MinScore || s.Interest > MaxScore {
		return fmt.Errorf("stakeholder %q: interest %d outside %d-%d", s.Name, s.Interest, MinScore, MaxScore)
	}
	if s.Influence < MinScore || s.Influence > MaxScore {
		return fmt.Errorf("stakeholder %q: influence %d outside %d-%d", s.Name, s.Influence, MinScore, MaxScore)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("stakeholder %q: unknown category %q", s.Name, s.Category)
	}
	return nil
}

// Quadrant is the power/interest engagement quadrant of a stakeholder.
type Quadrant string

const (
	QuadrantManage  Quadrant = "Manage"
	QuadrantSatisfy Quadrant = "Satisfy"
	QuadrantInform  Quadrant = "Inform"
	QuadrantMonitor Quadrant = "Monitor"
)

// Label is the long-form legend text for the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantManage:
		return "Manage Closely"
	case QuadrantSatisfy:
		return "Keep Satisfied"
	case QuadrantInform:
		return "Keep Informed"
	default:
		return "Monitor"
	}
}

// Quadrant classifies the stakeholder on the power/interest grid.
func (s Stakeholder) Quadrant() Quadrant {
	highInterest := s.Interest > quadrantThreshold
	highInfluence := s.Influence > quadrantThreshold
	switch {
	case highInterest && highInfluence:
		return QuadrantManage
	case highInfluence:
		return QuadrantSatisfy
	case highInterest:
		return QuadrantInform
	default:
		return QuadrantMonitor
	}
}
