package http

import (
	"net/http"
	"path"

	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/domain/types"
)

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	page, err := s.session.Render(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

// locationHandler serves deep links: the request path becomes the current
// location and the resulting page is returned. File requests such as
// /favicon.ico are not locations and leave the history as it is.
func (s *Server) locationHandler(w http.ResponseWriter, r *http.Request) {
	if isFileRequest(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	s.session.Visit(r.Context(), r.URL.Path)
	s.pageHandler(w, r)
}

// isFileRequest reports whether the last path segment has an extension.
// No route location has one.
func isFileRequest(p string) bool {
	return path.Ext(path.Base(p)) != ""
}

func (s *Server) navigationHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Navigation())
}

func (s *Server) visitHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.session.Visit(r.Context(), req.Location))
}

func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Back(r.Context()))
}

func (s *Server) forwardHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Forward(r.Context()))
}

func (s *Server) requestViewHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View types.View `json:"view"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	state, err := s.session.RequestView(r.Context(), req.View)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) routesHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Routes   []model.Route `json:"routes"`
		Unlinked []types.View  `json:"unlinked"`
	}

	routes := s.session.Routes()
	unlinked := routes.Unlinked()
	if unlinked == nil {
		unlinked = []types.View{}
	}
	writeJSON(w, r, http.StatusOK, response{
		Routes:   routes.Routes(),
		Unlinked: unlinked,
	})
}
