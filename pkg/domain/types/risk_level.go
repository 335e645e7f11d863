package types

import "github.com/m-mizutani/goerr/v2"

// LikelihoodID identifies a likelihood level of the risk register
type LikelihoodID string

// ImpactID identifies an impact level of the risk register
type ImpactID string

func validateLevelID(kind, id string) error {
	if id == "" {
		return goerr.New(kind+" ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return goerr.New(kind+" ID must be lowercase alphanumeric with hyphens", goerr.V("id", id))
	}
	return nil
}

// Validate checks if the LikelihoodID is valid
func (l LikelihoodID) Validate() error { return validateLevelID("likelihood", string(l)) }

func (l LikelihoodID) String() string { return string(l) }

// Validate checks if the ImpactID is valid
func (i ImpactID) Validate() error { return validateLevelID("impact", string(i)) }

func (i ImpactID) String() string { return string(i) }
