package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// EvidenceFile is a file attached to a section as compliance evidence.
// Data is kept as-is and never inspected.
type EvidenceFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	Data        []byte `json:"data,omitempty"`
}

// NewEvidenceFile creates an evidence file reference with a fresh ID
func NewEvidenceFile(name, contentType string, data []byte) EvidenceFile {
	return EvidenceFile{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
}

func copyEvidenceFiles(files []EvidenceFile) []EvidenceFile {
	copied := make([]EvidenceFile, len(files))
	for i, f := range files {
		copied[i] = f
		if f.Data != nil {
			copied[i].Data = make([]byte, len(f.Data))
			copy(copied[i].Data, f.Data)
		}
	}
	return copied
}

// SectionAnswer holds the answer data of one assessment section
type SectionAnswer struct {
	RequirementsMet types.RequirementsMet `json:"requirementsMet"`
	Comments        string                `json:"comments"`
	ActionNeeded    string                `json:"actionNeeded"`
	ActionOwner     string                `json:"actionOwner"`
	EvidenceFiles   []EvidenceFile        `json:"evidenceFiles"`
}

// Copy returns a deep copy of the answer
func (a SectionAnswer) Copy() SectionAnswer {
	copied := a
	copied.EvidenceFiles = copyEvidenceFiles(a.EvidenceFiles)
	return copied
}

// IsBlank reports whether nothing has been entered
func (a SectionAnswer) IsBlank() bool {
	return a.RequirementsMet == types.RequirementsUnset &&
		a.Comments == "" &&
		a.ActionNeeded == "" &&
		a.ActionOwner == "" &&
		len(a.EvidenceFiles) == 0
}

// AssessmentForm is the in-progress answer set of one domain. It is mutated
// field by field while the form view is active.
type AssessmentForm struct {
	domain  types.DomainID
	keys    []types.SectionKey
	answers map[types.SectionKey]*SectionAnswer
}

// NewAssessmentForm creates a blank form with every section of domain unset
func NewAssessmentForm(domain *AssessmentDomain) *AssessmentForm {
	f := &AssessmentForm{
		domain:  domain.ID,
		keys:    make([]types.SectionKey, len(domain.Sections)),
		answers: make(map[types.SectionKey]*SectionAnswer, len(domain.Sections)),
	}
	for i, s := range domain.Sections {
		f.keys[i] = s.Key
		f.answers[s.Key] = &SectionAnswer{EvidenceFiles: []EvidenceFile{}}
	}
	return f
}

// Domain returns the domain the form belongs to
func (f *AssessmentForm) Domain() types.DomainID {
	return f.domain
}

// Keys returns section keys in declaration order
func (f *AssessmentForm) Keys() []types.SectionKey {
	keys := make([]types.SectionKey, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// Answer returns a copy of the answer of the section
func (f *AssessmentForm) Answer(key types.SectionKey) (SectionAnswer, bool) {
	a, ok := f.answers[key]
	if !ok {
		return SectionAnswer{}, false
	}
	return a.Copy(), true
}

func (f *AssessmentForm) section(key types.SectionKey) (*SectionAnswer, error) {
	a, ok := f.answers[key]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownSection, "section is not part of the form",
			goerr.V(DomainIDKey, f.domain),
			goerr.V(SectionKeyKey, key))
	}
	return a, nil
}

// SetRequirementsMet sets the compliance answer of a section
func (f *AssessmentForm) SetRequirementsMet(key types.SectionKey, v types.RequirementsMet) error {
	if !v.IsValid() {
		return goerr.Wrap(ErrInvalidAnswer, "requirements met must be yes, no or empty",
			goerr.V(SectionKeyKey, key), goerr.V("value", v))
	}
	a, err := f.section(key)
	if err != nil {
		return err
	}
	a.RequirementsMet = v
	return nil
}

// SetComments sets the free text comments of a section
func (f *AssessmentForm) SetComments(key types.SectionKey, v string) error {
	a, err := f.section(key)
	if err != nil {
		return err
	}
	a.Comments = v
	return nil
}

// SetActionNeeded sets the remediation action of a section
func (f *AssessmentForm) SetActionNeeded(key types.SectionKey, v string) error {
	a, err := f.section(key)
	if err != nil {
		return err
	}
	a.ActionNeeded = v
	return nil
}

// SetActionOwner sets the owner of the remediation action of a section
func (f *AssessmentForm) SetActionOwner(key types.SectionKey, v string) error {
	a, err := f.section(key)
	if err != nil {
		return err
	}
	a.ActionOwner = v
	return nil
}

// SetEvidenceFiles replaces the evidence list of a section. Selecting files
// again overwrites the previous selection.
func (f *AssessmentForm) SetEvidenceFiles(key types.SectionKey, files []EvidenceFile) error {
	a, err := f.section(key)
	if err != nil {
		return err
	}
	a.EvidenceFiles = copyEvidenceFiles(files)
	return nil
}

// FirstUnanswered returns the first section in declaration order whose
// requirements-met answer is unset.
func (f *AssessmentForm) FirstUnanswered() (types.SectionKey, bool) {
	for _, key := range f.keys {
		if !f.answers[key].RequirementsMet.IsSet() {
			return key, true
		}
	}
	return "", false
}

// IsBlank reports whether the form equals a freshly created one
func (f *AssessmentForm) IsBlank() bool {
	for _, a := range f.answers {
		if !a.IsBlank() {
			return false
		}
	}
	return true
}

// Sections returns a deep copy of every answer keyed by section
func (f *AssessmentForm) Sections() map[types.SectionKey]SectionAnswer {
	sections := make(map[types.SectionKey]SectionAnswer, len(f.answers))
	for key, a := range f.answers {
		sections[key] = a.Copy()
	}
	return sections
}

// Copy returns a deep copy of the form
func (f *AssessmentForm) Copy() *AssessmentForm {
	copied := &AssessmentForm{
		domain:  f.domain,
		keys:    f.Keys(),
		answers: make(map[types.SectionKey]*SectionAnswer, len(f.answers)),
	}
	for key, a := range f.answers {
		c := a.Copy()
		copied.answers[key] = &c
	}
	return copied
}

type formSectionJSON struct {
	Key    types.SectionKey `json:"key"`
	Answer SectionAnswer    `json:"answer"`
}

// MarshalJSON encodes sections in declaration order
func (f *AssessmentForm) MarshalJSON() ([]byte, error) {
	sections := make([]formSectionJSON, len(f.keys))
	for i, key := range f.keys {
		sections[i] = formSectionJSON{Key: key, Answer: *f.answers[key]}
	}
	return json.Marshal(struct {
		Domain   types.DomainID    `json:"domain"`
		Sections []formSectionJSON `json:"sections"`
	}{
		Domain:   f.domain,
		Sections: sections,
	})
}

// SubmissionID identifies a submission. It is derived from the submission
// time in Unix milliseconds.
type SubmissionID string

func (id SubmissionID) String() string {
	return string(id)
}

// NewSubmissionID derives an ID from now that is greater than every numeric
// ID in existing, so IDs stay unique when the clock has not advanced.
func NewSubmissionID(now time.Time, existing []*AssessmentSubmission) SubmissionID {
	candidate := now.UnixMilli()
	for _, s := range existing {
		v, err := strconv.ParseInt(string(s.ID), 10, 64)
		if err != nil {
			continue
		}
		if v >= candidate {
			candidate = v + 1
		}
	}
	return SubmissionID(strconv.FormatInt(candidate, 10))
}

// AssessmentSubmission is a finalized answer set. It is never modified
// after it has been appended to the submission history.
type AssessmentSubmission struct {
	ID          SubmissionID                       `json:"id"`
	Domain      types.DomainID                     `json:"domain"`
	SubmittedAt time.Time                          `json:"submittedAt"`
	Sections    map[types.SectionKey]SectionAnswer `json:"sections"`
}

// Section returns a copy of the answer of the section
func (s *AssessmentSubmission) Section(key types.SectionKey) (SectionAnswer, bool) {
	a, ok := s.Sections[key]
	if !ok {
		return SectionAnswer{}, false
	}
	return a.Copy(), true
}

// Evidence finds an evidence file by ID across all sections
func (s *AssessmentSubmission) Evidence(fileID string) (*EvidenceFile, bool) {
	for _, a := range s.Sections {
		for _, f := range a.EvidenceFiles {
			if f.ID == fileID {
				copied := copyEvidenceFiles([]EvidenceFile{f})[0]
				return &copied, true
			}
		}
	}
	return nil, false
}

// Copy returns a deep copy of the submission
func (s *AssessmentSubmission) Copy() *AssessmentSubmission {
	copied := &AssessmentSubmission{
		ID:          s.ID,
		Domain:      s.Domain,
		SubmittedAt: s.SubmittedAt,
		Sections:    make(map[types.SectionKey]SectionAnswer, len(s.Sections)),
	}
	for key, a := range s.Sections {
		copied.Sections[key] = a.Copy()
	}
	return copied
}

// WithoutPayload returns a deep copy with the evidence data removed. File
// names, types and sizes are kept.
func (s *AssessmentSubmission) WithoutPayload() *AssessmentSubmission {
	copied := &AssessmentSubmission{
		ID:          s.ID,
		Domain:      s.Domain,
		SubmittedAt: s.SubmittedAt,
		Sections:    make(map[types.SectionKey]SectionAnswer, len(s.Sections)),
	}
	for key, a := range s.Sections {
		stripped := a
		stripped.EvidenceFiles = nil
		if a.EvidenceFiles != nil {
			stripped.EvidenceFiles = make([]EvidenceFile, len(a.EvidenceFiles))
			for i, f := range a.EvidenceFiles {
				f.Data = nil
				stripped.EvidenceFiles[i] = f
			}
		}
		copied.Sections[key] = stripped
	}
	return copied
}

// CopySubmissions deep copies a submission history
func CopySubmissions(list []*AssessmentSubmission) []*AssessmentSubmission {
	copied := make([]*AssessmentSubmission, len(list))
	for i, s := range list {
		copied[i] = s.Copy()
	}
	return copied
}
