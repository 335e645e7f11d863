package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

func TestView_IsValid(t *testing.T) {
	tests := []struct {
		name string
		view types.View
		want bool
	}{
		{"dashboard", types.ViewDashboard, true},
		{"risk analysis", types.ViewRiskAnalysis, true},
		{"context form", types.ViewContextOrg, true},
		{"context reports", types.ViewContextOrganizationReports, true},
		{"improvement reports", types.ViewImprovementReports, true},
		{"unknown", types.View("settings"), false},
		{"empty", types.View(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.view.IsValid()).Equal(tt.want)
		})
	}
}

func TestAllViews(t *testing.T) {
	views := types.AllViews()
	gt.A(t, views).Length(16)

	seen := make(map[types.View]bool)
	for _, v := range views {
		gt.B(t, v.IsValid()).
			Describef("View %s should be valid", v).
			True()
		gt.B(t, seen[v]).
			Describef("View %s is listed twice", v).
			False()
		seen[v] = true
	}

	gt.B(t, seen[types.DefaultView]).True()
}

func TestParseView(t *testing.T) {
	got, err := types.ParseView("leadership-reports")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(types.ViewLeadershipReports)

	_, err = types.ParseView("/leadership")
	gt.Error(t, err)
}
