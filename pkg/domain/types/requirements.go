package types

import "fmt"

// RequirementsMet is the compliance answer of one assessment section
type RequirementsMet string

const (
	RequirementsUnset RequirementsMet = ""
	RequirementsYes   RequirementsMet = "yes"
	RequirementsNo    RequirementsMet = "no"
)

// IsValid checks if the value is one of unset, yes or no
func (r RequirementsMet) IsValid() bool {
	switch r {
	case RequirementsUnset, RequirementsYes, RequirementsNo:
		return true
	default:
		return false
	}
}

// IsSet reports whether the section has been answered
func (r RequirementsMet) IsSet() bool {
	return r == RequirementsYes || r == RequirementsNo
}

func (r RequirementsMet) String() string {
	return string(r)
}

// ParseRequirementsMet parses user input. An empty string clears the answer.
func ParseRequirementsMet(s string) (RequirementsMet, error) {
	r := RequirementsMet(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid requirements met value: %s", s)
	}
	return r, nil
}
