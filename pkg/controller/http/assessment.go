package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/safe"
)

// evidenceFormField is the multipart field that carries evidence files
const evidenceFormField = "files"

func domainParam(r *http.Request) types.DomainID {
	return types.DomainID(chi.URLParam(r, "domain"))
}

func sectionParam(r *http.Request) types.SectionKey {
	return types.SectionKey(chi.URLParam(r, "section"))
}

func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Domains []*model.AssessmentDomain `json:"domains"`
	}
	writeJSON(w, r, http.StatusOK, response{Domains: s.session.Catalog().List()})
}

func (s *Server) draftHandler(w http.ResponseWriter, r *http.Request) {
	draft, err := s.session.Draft(r.Context(), domainParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, draft)
}

func (s *Server) resetDraftHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context(), domainParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateFieldHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	domainID := domainParam(r)
	if err := s.session.UpdateField(r.Context(), domainID, sectionParam(r), req.Field, req.Value); err != nil {
		handleError(w, r, err)
		return
	}

	draft, err := s.session.Draft(r.Context(), domainID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, draft)
}

// evidenceUploadHandler replaces the evidence of a section with the files
// of one multipart request. An empty selection clears it.
func (s *Server) evidenceUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, r, goerr.Wrap(errBadRequest, "upload is too large", goerr.V("limit", s.maxUploadSize)))
			return
		}
		handleError(w, r, goerr.Wrap(errBadRequest, "invalid multipart form", goerr.V("error", err.Error())))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var files []model.EvidenceFile
	for _, header := range r.MultipartForm.File[evidenceFormField] {
		f, err := header.Open()
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to open uploaded file", goerr.V("name", header.Filename)))
			return
		}
		data, err := io.ReadAll(f)
		safe.Close(r.Context(), f)
		if err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to read uploaded file", goerr.V("name", header.Filename)))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		files = append(files, model.NewEvidenceFile(header.Filename, contentType, data))
	}

	domainID := domainParam(r)
	if err := s.session.SetEvidenceFiles(r.Context(), domainID, sectionParam(r), files); err != nil {
		handleError(w, r, err)
		return
	}

	draft, err := s.session.Draft(r.Context(), domainID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, draft)
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		ID          model.SubmissionID      `json:"id"`
		SubmittedAt time.Time               `json:"submittedAt"`
		Navigation  usecase.NavigationState `json:"navigation"`
	}

	ctx := r.Context()
	domainID := domainParam(r)
	submission, err := s.session.Submit(ctx, domainID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	nav := s.session.Navigation()
	if r.URL.Query().Get("then") == "reports" {
		store, err := s.session.Records(domainID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if nav, err = s.session.RequestView(ctx, store.Domain().ReportsView); err != nil {
			handleError(w, r, err)
			return
		}
	}

	writeJSON(w, r, http.StatusCreated, response{
		ID:          submission.ID,
		SubmittedAt: submission.SubmittedAt,
		Navigation:  nav,
	})
}

func (s *Server) submissionsHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Submissions []*model.AssessmentSubmission `json:"submissions"`
	}

	list, err := s.session.ListSubmissions(r.Context(), domainParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := response{Submissions: make([]*model.AssessmentSubmission, len(list))}
	for i, sub := range list {
		resp.Submissions[i] = sub.WithoutPayload()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) evidenceDownloadHandler(w http.ResponseWriter, r *http.Request) {
	id := model.SubmissionID(chi.URLParam(r, "id"))
	file, err := s.session.Evidence(r.Context(), domainParam(r), id, chi.URLParam(r, "file"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, file.Data)
}
