package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// Assessment and navigation errors
var (
	ErrRequirementsNotAnswered = goerr.New("requirements met is not answered")
	ErrUnknownSection          = goerr.New("unknown assessment section")
	ErrInvalidAnswer           = goerr.New("invalid answer value")
	ErrDomainNotFound          = goerr.New("assessment domain not found")
	ErrInvalidCatalog          = goerr.New("invalid assessment catalog")
	ErrInvalidRouteTable       = goerr.New("invalid route table")
)

// Context keys for error values
const (
	DomainIDKey   = "domain_id"
	SectionKeyKey = "section_key"
	ViewKey       = "view"
	LocationKey   = "location"
	StorageKeyKey = "storage_key"
)

// ValidationError reports the first section of a form, in declaration
// order, that has no requirements-met answer.
type ValidationError struct {
	Domain types.DomainID
	Key    types.SectionKey
	Title  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please select whether requirements are met for %q", e.Title)
}

func (e *ValidationError) Unwrap() error {
	return ErrRequirementsNotAnswered
}
