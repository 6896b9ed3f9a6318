package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTranscript(t *testing.T) {
	msgs := []ChatMessage{
		{ID: "1", Role: RoleModel, Content: "Hello.", Timestamp: time.Now()},
		{ID: "2", Role: RoleUser, Content: "We need a new CRM", Timestamp: time.Now()},
	}
	require.Equal(t, "MODEL: Hello.\nUSER: We need a new CRM", Transcript(msgs))
	require.Empty(t, Transcript(nil))
}

func TestStakeholderQuadrant(t *testing.T) {
	cases := []struct {
		interest, influence int
		want                Quadrant
	}{
		{6, 6, QuadrantManage},
		{10, 10, QuadrantManage},
		{5, 6, QuadrantSatisfy},
		{6, 5, QuadrantInform},
		{5, 5, QuadrantMonitor},
		{1, 1, QuadrantMonitor},
	}
	for _, tc := range cases {
		s := Stakeholder{Interest: tc.interest, Influence: tc.influence}
		require.Equal(t, tc.want, s.Quadrant(), "interest=%d influence=%d", tc.interest, tc.influence)
	}
	require.Equal(t, "Manage Closely", QuadrantManage.Label())
	require.Equal(t, "Keep Satisfied", QuadrantSatisfy.Label())
	require.Equal(t, "Keep Informed", QuadrantInform.Label())
	require.Equal(t, "Monitor", QuadrantMonitor.Label())
}

func TestStakeholderValidate(t *testing.T) {
	ok := Stakeholder{Name: "CFO", Interest: 1, Influence: 10, Category: CategoryInternal}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Influence = 12
	require.ErrorContains(t, bad.Validate(), "influence 12")

	bad = ok
	bad.Interest = 0
	require.ErrorContains(t, bad.Validate(), "interest 0")

	bad = ok
	bad.Category = "Partner"
	require.ErrorContains(t, bad.Validate(), "unknown category")
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule("")
	require.NoError(t, err)
	require.Equal(t, ModuleInitiation, m)

	m, err = ParseModule("stakeholders")
	require.NoError(t, err)
	require.Equal(t, ModuleStakeholderAnalysis, m)

	_, err = ParseModule("finance")
	require.Error(t, err)
}

func TestProjectStateClone_DoesNotAlias(t *testing.T) {
	orig := ProjectState{
		CurrentCharter: &ProjectCharter{ProjectName: "CRM Revamp", Objectives: []string{"a"}},
		Stakeholders:   []Stakeholder{{ID: "s1", Name: "CFO"}},
		Messages:       []ChatMessage{{ID: "m1", Content: "hi"}},
	}
	cp := orig.Clone()
	cp.CurrentCharter.Objectives[0] = "changed"
	cp.Stakeholders[0].Name = "CEO"
	cp.Messages[0].Content = "bye"

	require.Equal(t, "a", orig.CurrentCharter.Objectives[0])
	require.Equal(t, "CFO", orig.Stakeholders[0].Name)
	require.Equal(t, "hi", orig.Messages[0].Content)
	require.True(t, cp.HasCharter())
	require.True(t, cp.HasStakeholders())
	require.False(t, ProjectState{}.HasCharter())
}
