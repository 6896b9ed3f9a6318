package views

import (
	"context"

	"pm-launchpad/internal/domain"
)

// ChatActions is what the chat view may ask of the controller.
type ChatActions interface {
	SubmitMessage(ctx context.Context, text string)
	RequestCharter(ctx context.Context)
	RequestStakeholders(ctx context.Context)
}

// CharterActions is what the charter view may ask of the controller.
type CharterActions interface {
	RequestCharter(ctx context.Context)
}

// StakeholderActions is what the stakeholder view may ask of the controller.
type StakeholderActions interface {
	RequestStakeholders(ctx context.Context)
}

// NavigationActions is what the sidebar may ask of the controller.
type NavigationActions interface {
	SelectModule(m domain.Module)
	SelectView(v domain.View)
}

const (
	LabelFinalizeCharter  = "Finalize Charter"
	LabelMapStakeholders  = "Map Stakeholders"
	LabelRefreshCharter   = "Refresh Data"
	LabelRefineRegister   = "Refine Analysis"
	LabelAnalyzingContext = "Analyzing Project Context..."
)

// ChatPrimaryLabel names the generate action offered in the chat view.
func ChatPrimaryLabel(m domain.Module) string {
	if m == domain.ModuleStakeholderAnalysis {
		return LabelMapStakeholders
	}
	return LabelFinalizeCharter
}

// RunChatPrimary performs the chat view's generate action for module m.
func RunChatPrimary(ctx context.Context, a ChatActions, m domain.Module) {
	if m == domain.ModuleStakeholderAnalysis {
		a.RequestStakeholders(ctx)
		return
	}
	a.RequestCharter(ctx)
}

// RefreshCharter is the charter view's only action.
func RefreshCharter(ctx context.Context, a CharterActions) {
	a.RequestCharter(ctx)
}

// RefineStakeholders is the stakeholder view's only action.
func RefineStakeholders(ctx context.Context, a StakeholderActions) {
	a.RequestStakeholders(ctx)
}
