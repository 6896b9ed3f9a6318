package domain

// ProjectCharter is the structured project-initiation document produced from a
// conversation. A charter is always replaced wholesale, never patched.
type ProjectCharter struct {
	ProjectName     string   `json:"projectName"`
	BusinessNeed    string   `json:"businessNeed"`
	Objectives      []string `json:"objectives"`
	Scope           []string `json:"scope"`
	SuccessCriteria []string `json:"successCriteria"`
	Risks           []string `json:"risks"`
	Assumptions     []string `json:"assumptions"`
	Constraints     []string `json:"constraints"`
}

// Clone returns a deep copy of c.
func (c ProjectCharter) Clone() ProjectCharter {
	return ProjectCharter{
		ProjectName:     c.ProjectName,
		BusinessNeed:    c.BusinessNeed,
		Objectives:      cloneStrings(c.Objectives),
		Scope:           cloneStrings(c.Scope),
		SuccessCriteria: cloneStrings(c.SuccessCriteria),
		Risks:           cloneStrings(c.Risks),
		Assumptions:     cloneStrings(c.Assumptions),
		Constraints:     cloneStrings(c.Constraints),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
