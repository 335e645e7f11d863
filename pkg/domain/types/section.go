package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// SectionKey identifies one section of an assessment form, e.g. "section1"
type SectionKey string

var sectionKeyPattern = regexp.MustCompile(`^section[1-9][0-9]*$`)

// Validate checks the key format. Whether the key exists in a given form is
// decided by the form itself.
func (k SectionKey) Validate() error {
	if !sectionKeyPattern.MatchString(string(k)) {
		return goerr.New("section key must look like section<N>", goerr.V("key", k))
	}
	return nil
}

func (k SectionKey) String() string {
	return string(k)
}
