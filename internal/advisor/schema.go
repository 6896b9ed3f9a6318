package advisor

import "pm-launchpad/internal/domain"

const (
	charterFormatName      = "project_charter"
	stakeholderFormatName  = "stakeholder_register"
	stakeholderListPayload = "stakeholders"
)

func stringList(description string) *domain.Schema {
	return &domain.Schema{
		Type:        domain.SchemaArray,
		Description: description,
		Items:       &domain.Schema{Type: domain.SchemaString},
	}
}

func closed() *bool {
	f := false
	return &f
}

func score(description string) *domain.Schema {
	lo, hi := float64(domain.MinScore), float64(domain.MaxScore)
	return &domain.Schema{
		Type:        domain.SchemaInteger,
		Description: description,
		Minimum:     &lo,
		Maximum:     &hi,
	}
}

var charterFields = []string{
	"projectName", "businessNeed", "objectives", "scope",
	"successCriteria", "risks", "assumptions", "constraints",
}

func charterFormat() *domain.ResponseFormat {
	return &domain.ResponseFormat{
		Name: charterFormatName,
		Schema: &domain.Schema{
			Type: domain.SchemaObject,
			Properties: map[string]*domain.Schema{
				"projectName":     {Type: domain.SchemaString, Description: "Short descriptive project name"},
				"businessNeed":    {Type: domain.SchemaString, Description: "The problem or opportunity the project addresses"},
				"objectives":      stringList("Measurable project objectives"),
				"scope":           stringList("High-level in-scope items"),
				"successCriteria": stringList("How success will be judged"),
				"risks":           stringList("Key risks"),
				"assumptions":     stringList("Assumptions made"),
				"constraints":     stringList("Known constraints"),
			},
			PropertyOrder:        charterFields,
			Required:             charterFields,
			AdditionalProperties: closed(),
		},
	}
}

var stakeholderFields = []string{
	"id", "name", "role", "interest", "influence", "category", "expectations", "strategy",
}

func stakeholderFormat() *domain.ResponseFormat {
	entry := &domain.Schema{
		Type: domain.SchemaObject,
		Properties: map[string]*domain.Schema{
			"id":           {Type: domain.SchemaString, Description: "Stable identifier, unique within the register"},
			"name":         {Type: domain.SchemaString},
			"role":         {Type: domain.SchemaString},
			"interest":     score("Interest in the project, 1 (low) to 10 (high)"),
			"influence":    score("Influence over the project, 1 (low) to 10 (high)"),
			"category":     {Type: domain.SchemaString, Enum: []string{string(domain.CategoryInternal), string(domain.CategoryExternal)}},
			"expectations": {Type: domain.SchemaString},
			"strategy":     {Type: domain.SchemaString, Description: "Recommended engagement strategy"},
		},
		PropertyOrder:        stakeholderFields,
		Required:             stakeholderFields,
		AdditionalProperties: closed(),
	}
	return &domain.ResponseFormat{
		Name: stakeholderFormatName,
		Schema: &domain.Schema{
			Type: domain.SchemaObject,
			Properties: map[string]*domain.Schema{
				stakeholderListPayload: {Type: domain.SchemaArray, Items: entry},
			},
			PropertyOrder:        []string{stakeholderListPayload},
			Required:             []string{stakeholderListPayload},
			AdditionalProperties: closed(),
		},
	}
}
