package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// AssessmentSection is one fixed questionnaire item of a domain
type AssessmentSection struct {
	Key   types.SectionKey `json:"key"`
	Title string           `json:"title"`
}

// AssessmentDomain is a clause group of ISO/IEC 27001 with its fixed set of
// sections, the views that present it and the key its history is stored under.
type AssessmentDomain struct {
	ID          types.DomainID      `json:"id"`
	Name        string              `json:"name"`
	StorageKey  string              `json:"storageKey"`
	FormView    types.View          `json:"formView"`
	ReportsView types.View          `json:"reportsView"`
	Sections    []AssessmentSection `json:"sections"`
}

// Section looks up a section definition by key
func (d *AssessmentDomain) Section(key types.SectionKey) (AssessmentSection, bool) {
	for _, s := range d.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return AssessmentSection{}, false
}

// Validate checks the domain definition
func (d *AssessmentDomain) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid domain ID")
	}
	if d.Name == "" {
		return goerr.Wrap(ErrInvalidCatalog, "domain name is required", goerr.V(DomainIDKey, d.ID))
	}
	if d.StorageKey == "" {
		return goerr.Wrap(ErrInvalidCatalog, "storage key is required", goerr.V(DomainIDKey, d.ID))
	}
	if !d.FormView.IsValid() || !d.ReportsView.IsValid() || d.FormView == d.ReportsView {
		return goerr.Wrap(ErrInvalidCatalog, "domain views must be two distinct known views",
			goerr.V(DomainIDKey, d.ID),
			goerr.V("form_view", d.FormView),
			goerr.V("reports_view", d.ReportsView))
	}
	if len(d.Sections) == 0 {
		return goerr.Wrap(ErrInvalidCatalog, "domain has no sections", goerr.V(DomainIDKey, d.ID))
	}

	keys := make(map[types.SectionKey]bool)
	for _, s := range d.Sections {
		if err := s.Key.Validate(); err != nil {
			return goerr.Wrap(err, "invalid section key", goerr.V(DomainIDKey, d.ID))
		}
		if keys[s.Key] {
			return goerr.Wrap(ErrInvalidCatalog, "duplicate section key",
				goerr.V(DomainIDKey, d.ID), goerr.V(SectionKeyKey, s.Key))
		}
		if s.Title == "" {
			return goerr.Wrap(ErrInvalidCatalog, "section title is required",
				goerr.V(DomainIDKey, d.ID), goerr.V(SectionKeyKey, s.Key))
		}
		keys[s.Key] = true
	}
	return nil
}

// Catalog holds the assessment domains in registration order
type Catalog struct {
	entries map[types.DomainID]*AssessmentDomain
	order   []types.DomainID
}

// NewCatalog builds a catalog and validates it as a whole
func NewCatalog(domains ...*AssessmentDomain) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[types.DomainID]*AssessmentDomain),
	}

	storageKeys := make(map[string]bool)
	views := make(map[types.View]bool)
	for _, d := range domains {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.entries[d.ID]; exists {
			return nil, goerr.Wrap(ErrInvalidCatalog, "duplicate domain ID", goerr.V(DomainIDKey, d.ID))
		}
		if storageKeys[d.StorageKey] {
			return nil, goerr.Wrap(ErrInvalidCatalog, "duplicate storage key", goerr.V(StorageKeyKey, d.StorageKey))
		}
		if views[d.FormView] || views[d.ReportsView] {
			return nil, goerr.Wrap(ErrInvalidCatalog, "view is bound to more than one domain", goerr.V(DomainIDKey, d.ID))
		}
		storageKeys[d.StorageKey] = true
		views[d.FormView] = true
		views[d.ReportsView] = true

		c.entries[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Get retrieves a domain by ID
func (c *Catalog) Get(id types.DomainID) (*AssessmentDomain, error) {
	d, ok := c.entries[id]
	if !ok {
		return nil, goerr.Wrap(ErrDomainNotFound, "domain not found", goerr.V(DomainIDKey, id))
	}
	return d, nil
}

// List returns all domains in registration order
func (c *Catalog) List() []*AssessmentDomain {
	result := make([]*AssessmentDomain, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.entries[id])
	}
	return result
}

// ByView returns the domain presented by view and whether view is its
// reports view.
func (c *Catalog) ByView(view types.View) (*AssessmentDomain, bool, bool) {
	for _, id := range c.order {
		d := c.entries[id]
		switch view {
		case d.FormView:
			return d, false, true
		case d.ReportsView:
			return d, true, true
		}
	}
	return nil, false, false
}

func sections(titles ...string) []AssessmentSection {
	result := make([]AssessmentSection, len(titles))
	for i, title := range titles {
		result[i] = AssessmentSection{
			Key:   types.SectionKey(fmt.Sprintf("section%d", i+1)),
			Title: title,
		}
	}
	return result
}

// DefaultCatalog returns the clause 4 to 10 domains of ISO/IEC 27001:2022
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		&AssessmentDomain{
			ID:          types.DomainContextOrganization,
			Name:        "Context of the Organization",
			StorageKey:  "contextOrganizationRecords",
			FormView:    types.ViewContextOrg,
			ReportsView: types.ViewContextOrganizationReports,
			Sections: sections(
				"4.1 Understanding the organization and its context",
				"4.2 Understanding the needs and expectations of interested parties",
				"4.3 Determining the scope of the information security management system",
				"4.4 Information security management system",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainLeadership,
			Name:        "Leadership",
			StorageKey:  "leadershipRecords",
			FormView:    types.ViewLeadership,
			ReportsView: types.ViewLeadershipReports,
			Sections: sections(
				"5.1 Leadership and commitment",
				"5.2 Information security policy",
				"5.3 Organizational roles, responsibilities and authorities",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainPlanning,
			Name:        "Planning",
			StorageKey:  "planningRecords",
			FormView:    types.ViewPlanning,
			ReportsView: types.ViewPlanningReports,
			Sections: sections(
				"6.1 Actions to address risks and opportunities",
				"6.2 Information security objectives and planning to achieve them",
				"6.3 Planning of changes",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainSupport,
			Name:        "Support",
			StorageKey:  "supportRecords",
			FormView:    types.ViewSupport,
			ReportsView: types.ViewSupportReports,
			Sections: sections(
				"7.1 Resources",
				"7.2 Competence",
				"7.3 Awareness",
				"7.4 Communication",
				"7.5 Documented information",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainOperation,
			Name:        "Operation",
			StorageKey:  "operationRecords",
			FormView:    types.ViewOperation,
			ReportsView: types.ViewOperationReports,
			Sections: sections(
				"8.1 Operational planning and control",
				"8.2 Information security risk assessment",
				"8.3 Information security risk treatment",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainPerformanceEvaluation,
			Name:        "Performance Evaluation",
			StorageKey:  "performanceEvaluationRecords",
			FormView:    types.ViewPerformanceEvaluation,
			ReportsView: types.ViewPerformanceEvaluationReports,
			Sections: sections(
				"9.1 Monitoring, measurement, analysis and evaluation",
				"9.2 Internal audit",
				"9.3 Management review",
			),
		},
		&AssessmentDomain{
			ID:          types.DomainImprovement,
			Name:        "Improvement",
			StorageKey:  "improvementRecords",
			FormView:    types.ViewImprovement,
			ReportsView: types.ViewImprovementReports,
			Sections: sections(
				"10.1 Continual improvement",
				"10.2 Nonconformity and corrective action",
			),
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
