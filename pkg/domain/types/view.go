package types

import "fmt"

// View identifies what the dashboard is currently rendering
type View string

const (
	ViewDashboard                    View = "dashboard"
	ViewRiskAnalysis                 View = "risk-analysis"
	ViewContextOrg                   View = "context-org"
	ViewContextOrganizationReports   View = "context-organization-reports"
	ViewLeadership                   View = "leadership"
	ViewLeadershipReports            View = "leadership-reports"
	ViewPlanning                     View = "planning"
	ViewPlanningReports              View = "planning-reports"
	ViewSupport                      View = "support"
	ViewSupportReports               View = "support-reports"
	ViewOperation                    View = "operation"
	ViewOperationReports             View = "operation-reports"
	ViewPerformanceEvaluation        View = "performance-evaluation"
	ViewPerformanceEvaluationReports View = "performance-evaluation-reports"
	ViewImprovement                  View = "improvement"
	ViewImprovementReports           View = "improvement-reports"
)

// DefaultView is active when nothing else resolves
const DefaultView = ViewDashboard

// AllViews returns every view of the closed set in menu order
func AllViews() []View {
	return []View{
		ViewDashboard,
		ViewRiskAnalysis,
		ViewContextOrg,
		ViewContextOrganizationReports,
		ViewLeadership,
		ViewLeadershipReports,
		ViewPlanning,
		ViewPlanningReports,
		ViewSupport,
		ViewSupportReports,
		ViewOperation,
		ViewOperationReports,
		ViewPerformanceEvaluation,
		ViewPerformanceEvaluationReports,
		ViewImprovement,
		ViewImprovementReports,
	}
}

// IsValid checks if the view is a member of the closed set
func (v View) IsValid() bool {
	switch v {
	case ViewDashboard,
		ViewRiskAnalysis,
		ViewContextOrg,
		ViewContextOrganizationReports,
		ViewLeadership,
		ViewLeadershipReports,
		ViewPlanning,
		ViewPlanningReports,
		ViewSupport,
		ViewSupportReports,
		ViewOperation,
		ViewOperationReports,
		ViewPerformanceEvaluation,
		ViewPerformanceEvaluationReports,
		ViewImprovement,
		ViewImprovementReports:
		return true
	default:
		return false
	}
}

// String returns the string representation of the view
func (v View) String() string {
	return string(v)
}

// ParseView parses a string into a View
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid view: %s", s)
	}
	return v, nil
}
