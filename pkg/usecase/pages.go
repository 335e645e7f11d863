package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/model/config"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// NavigationCard is a link to another view shown on a page
type NavigationCard struct {
	Title string     `json:"title"`
	View  types.View `json:"view"`
}

// DomainSummary is the dashboard tile of one assessment domain
type DomainSummary struct {
	ID                types.DomainID `json:"id"`
	Name              string         `json:"name"`
	FormView          types.View     `json:"formView"`
	ReportsView       types.View     `json:"reportsView"`
	Submissions       int            `json:"submissions"`
	LatestSubmittedAt *time.Time     `json:"latestSubmittedAt,omitempty"`
	// Compliance is the ratio of "yes" among answered sections of the
	// latest submission. It is nil before the first submission.
	Compliance *float64 `json:"compliance,omitempty"`
}

type DashboardData struct {
	Domains []DomainSummary  `json:"domains"`
	Cards   []NavigationCard `json:"cards"`
}

// DashboardPage renders the overview of every domain
type DashboardPage struct {
	stores []*RecordStore
}

func NewDashboardPage(stores []*RecordStore) *DashboardPage {
	return &DashboardPage{stores: stores}
}

func (p *DashboardPage) Render(ctx context.Context, _ RequestViewFunc) (*model.Page, error) {
	data := &DashboardData{
		Domains: make([]DomainSummary, 0, len(p.stores)),
		Cards: []NavigationCard{
			{Title: "Risk Analysis", View: types.ViewRiskAnalysis},
		},
	}

	for _, store := range p.stores {
		d := store.Domain()
		summary := DomainSummary{
			ID:          d.ID,
			Name:        d.Name,
			FormView:    d.FormView,
			ReportsView: d.ReportsView,
		}

		count, latest := store.Summary(ctx)
		summary.Submissions = count
		if latest != nil {
			at := latest.SubmittedAt
			summary.LatestSubmittedAt = &at
			summary.Compliance = complianceRatio(latest)
		}

		data.Domains = append(data.Domains, summary)
		data.Cards = append(data.Cards, NavigationCard{Title: d.Name, View: d.FormView})
	}

	return &model.Page{
		View:  types.ViewDashboard,
		Title: "ISO 27001 Compliance Dashboard",
		Data:  data,
	}, nil
}

func complianceRatio(s *model.AssessmentSubmission) *float64 {
	var yes, answered int
	for _, a := range s.Sections {
		if !a.RequirementsMet.IsSet() {
			continue
		}
		answered++
		if a.RequirementsMet == types.RequirementsYes {
			yes++
		}
	}
	if answered == 0 {
		return nil
	}
	ratio := float64(yes) / float64(answered)
	return &ratio
}

// RiskAnalysisPage renders the static risk register and compliance trend
type RiskAnalysisPage struct {
	risk *config.RiskConfig
}

func NewRiskAnalysisPage(risk *config.RiskConfig) *RiskAnalysisPage {
	if risk == nil {
		risk = config.DefaultRiskConfig()
	}
	return &RiskAnalysisPage{risk: risk}
}

func (p *RiskAnalysisPage) Render(ctx context.Context, _ RequestViewFunc) (*model.Page, error) {
	return &model.Page{
		View:  types.ViewRiskAnalysis,
		Title: "Risk Analysis",
		Data:  p.risk,
	}, nil
}

type AssessmentFormData struct {
	Domain *model.AssessmentDomain `json:"domain"`
	Draft  *model.AssessmentForm   `json:"draft"`
	Cards  []NavigationCard        `json:"cards"`
}

// AssessmentFormPage renders the section definitions and current draft of
// one domain
type AssessmentFormPage struct {
	store *RecordStore
}

func NewAssessmentFormPage(store *RecordStore) *AssessmentFormPage {
	return &AssessmentFormPage{store: store}
}

func (p *AssessmentFormPage) Render(ctx context.Context, _ RequestViewFunc) (*model.Page, error) {
	d := p.store.Domain()
	return &model.Page{
		View:  d.FormView,
		Title: d.Name + " Assessment",
		Data: &AssessmentFormData{
			Domain: d,
			Draft:  p.store.Draft(),
			Cards: []NavigationCard{
				{Title: "View Reports", View: d.ReportsView},
				{Title: "Back to Dashboard", View: types.ViewDashboard},
			},
		},
	}, nil
}

// EvidenceSummary describes an evidence file without its payload
type EvidenceSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}

type SectionReport struct {
	Key             types.SectionKey      `json:"key"`
	Title           string                `json:"title"`
	RequirementsMet types.RequirementsMet `json:"requirementsMet"`
	Comments        string                `json:"comments"`
	ActionNeeded    string                `json:"actionNeeded"`
	ActionOwner     string                `json:"actionOwner"`
	EvidenceFiles   []EvidenceSummary     `json:"evidenceFiles"`
}

type SubmissionReport struct {
	ID          model.SubmissionID `json:"id"`
	SubmittedAt time.Time          `json:"submittedAt"`
	Sections    []SectionReport    `json:"sections"`
}

type AssessmentReportsData struct {
	Domain      *model.AssessmentDomain `json:"domain"`
	Submissions []SubmissionReport      `json:"submissions"`
	Cards       []NavigationCard        `json:"cards"`
}

// AssessmentReportsPage renders the submission history of one domain,
// newest first
type AssessmentReportsPage struct {
	store *RecordStore
}

func NewAssessmentReportsPage(store *RecordStore) *AssessmentReportsPage {
	return &AssessmentReportsPage{store: store}
}

func (p *AssessmentReportsPage) Render(ctx context.Context, _ RequestViewFunc) (*model.Page, error) {
	d := p.store.Domain()
	list := p.store.ListSubmissions(ctx)

	reports := make([]SubmissionReport, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		reports = append(reports, buildSubmissionReport(d, list[i]))
	}

	return &model.Page{
		View:  d.ReportsView,
		Title: d.Name + " Assessment Reports",
		Data: &AssessmentReportsData{
			Domain:      d,
			Submissions: reports,
			Cards: []NavigationCard{
				{Title: "New Assessment", View: d.FormView},
				{Title: "Back to Dashboard", View: types.ViewDashboard},
			},
		},
	}, nil
}

// buildSubmissionReport lists sections in declaration order. Sections of
// the submission that are no longer in the catalog are left out.
func buildSubmissionReport(d *model.AssessmentDomain, s *model.AssessmentSubmission) SubmissionReport {
	report := SubmissionReport{
		ID:          s.ID,
		SubmittedAt: s.SubmittedAt,
		Sections:    make([]SectionReport, 0, len(d.Sections)),
	}
	for _, section := range d.Sections {
		a, ok := s.Sections[section.Key]
		if !ok {
			continue
		}
		files := make([]EvidenceSummary, len(a.EvidenceFiles))
		for i, f := range a.EvidenceFiles {
			files[i] = EvidenceSummary{ID: f.ID, Name: f.Name, ContentType: f.ContentType, Size: f.Size}
		}
		report.Sections = append(report.Sections, SectionReport{
			Key:             section.Key,
			Title:           section.Title,
			RequirementsMet: a.RequirementsMet,
			Comments:        a.Comments,
			ActionNeeded:    a.ActionNeeded,
			ActionOwner:     a.ActionOwner,
			EvidenceFiles:   files,
		})
	}
	return report
}
