package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/transcript"
)

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type preferencesBody struct {
	RTL       *bool `json:"rtl,omitempty"`
	WebSearch *bool `json:"web_search,omitempty"`
}

type preferencesResponse struct {
	RTL       bool `json:"rtl"`
	WebSearch bool `json:"web_search"`
}

type chatBody struct {
	Message string `json:"message"`
}

type chatResult struct {
	Busy     bool                  `json:"busy,omitempty"`
	Messages []advisor.ChatMessage `json:"messages"`
}

type transcriptResponse struct {
	Entries []transcript.Entry `json:"entries"`
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, a.ApplyFilters(q.Get("category"), q.Get("q")))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	cats := a.Categories()
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	writeJSON(w, http.StatusOK, a.Selection())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	view, err := a.ToggleProduct(r.Context(), id)
	if errors.Is(err, advisor.ErrUnknownProduct) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	writeJSON(w, http.StatusOK, a.ClearSelection(r.Context()))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	st := a.Snapshot()
	writeJSON(w, http.StatusOK, preferencesResponse{RTL: st.RTL, WebSearch: st.WebSearch})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)

	var body preferencesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if body.RTL != nil {
		if err := a.SetRTL(r.Context(), *body.RTL); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	if body.WebSearch != nil {
		a.SetWebSearch(*body.WebSearch)
	}

	st := a.Snapshot()
	writeJSON(w, http.StatusOK, preferencesResponse{RTL: st.RTL, WebSearch: st.WebSearch})
}

// handleRoutine reports whether another request was already in flight but
// serves this one regardless.
func (s *Server) handleRoutine(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)
	busy := a.Busy()
	writeJSON(w, http.StatusOK, chatResult{Busy: busy, Messages: a.GenerateRoutine(r.Context())})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	a, _ := s.advisorFor(w, r)

	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	msgs := a.SendChat(r.Context(), body.Message)
	if msgs == nil {
		msgs = []advisor.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, chatResult{Messages: msgs})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	_, id := s.advisorFor(w, r)

	entries := []transcript.Entry{}
	if s.transcripts != nil {
		var err error
		entries, err = s.transcripts.List(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Entries: entries})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
