package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// DomainID identifies an assessment domain (one ISO/IEC 27001 clause group)
type DomainID string

const (
	DomainContextOrganization   DomainID = "context-organization"
	DomainLeadership            DomainID = "leadership"
	DomainPlanning              DomainID = "planning"
	DomainSupport               DomainID = "support"
	DomainOperation             DomainID = "operation"
	DomainPerformanceEvaluation DomainID = "performance-evaluation"
	DomainImprovement           DomainID = "improvement"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the DomainID is valid
func (d DomainID) Validate() error {
	if d == "" {
		return goerr.New("domain ID cannot be empty")
	}
	if !idPattern.MatchString(string(d)) {
		return goerr.New("domain ID must be lowercase alphanumeric with hyphens", goerr.V("id", d))
	}
	return nil
}

// String returns the string representation of DomainID
func (d DomainID) String() string {
	return string(d)
}
