package web

import (
	"context"
	"encoding/json"
	"net/http"

	"indigo/internal/models"
	"indigo/internal/session"
)

// commandFunc runs one controller command and returns the alert to show,
// or "".
type commandFunc func(r *http.Request, sess *session.Session) string

// command wraps a form post: resolve the session, run fn, queue its alert
// and redirect back to the page.
func (s *Server) command(fn commandFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(w, r)
		if err != nil {
			http.Error(w, "menu is shutting down", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		sess.Alert(fn(r, sess))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// opContext detaches a store write from the request so a closed tab does
// not abort it.
func opContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "menu is shutting down", http.StatusServiceUnavailable)
		return
	}

	page := BuildPage(sess.Controller().State(), s.baseURL(r))
	page.Alerts = sess.TakeAlerts()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.ExecuteTemplate(w, "menu", page); err != nil {
		s.logger.Error().Err(err).Msg("failed to render menu")
	}
}

func (s *Server) handleSubmitPin(r *http.Request, sess *session.Session) string {
	c := sess.Controller()
	c.SetPinInput(r.PostFormValue("pin"))
	return c.SubmitPin().Alert()
}

func (s *Server) handleToggle(r *http.Request, sess *session.Session) string {
	return sess.Controller().ToggleAvailability(opContext(r), r.PathValue("id")).Alert()
}

func (s *Server) handleSaveEdit(r *http.Request, sess *session.Session) string {
	c := sess.Controller()
	c.SetEditDraft(r.PostFormValue("name"), r.PostFormValue("price"), r.PostFormValue("description"))
	return c.SaveEdit(opContext(r)).Alert()
}

func (s *Server) handleBeginAdd(r *http.Request, sess *session.Session) string {
	return sess.Controller().BeginAdd(models.CategoryKey(r.PathValue("key"))).Alert()
}

func (s *Server) handleAddItem(r *http.Request, sess *session.Session) string {
	c := sess.Controller()
	c.SetNewItemDraft(
		r.PostFormValue("name"),
		r.PostFormValue("price"),
		r.PostFormValue("description"),
		r.PostFormValue("image"),
	)
	return c.AddNewItem(opContext(r)).Alert()
}

func (s *Server) handleConfirmDelete(r *http.Request, sess *session.Session) string {
	return sess.Controller().ConfirmDelete(opContext(r)).Alert()
}

// handleAsk returns as soon as the loading flag is set; the answer arrives
// over the live socket.
func (s *Server) handleAsk(r *http.Request, sess *session.Session) string {
	c := sess.Controller()
	c.SetMood(r.PostFormValue("mood"))
	return c.AskAIAsync(opContext(r)).Alert()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

type menuCategory struct {
	Key   models.CategoryKey `json:"key"`
	Label string             `json:"label"`
	Items []models.MenuItem  `json:"items"`
}

// handleMenuJSON serves the customer view of the menu: available items of
// known categories, grouped in catalog order.
func (s *Server) handleMenuJSON(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListItems(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list menu")
		writeError(w, http.StatusServiceUnavailable, "menu unavailable")
		return
	}

	available := models.AvailableOnly(items)
	categories := make([]menuCategory, 0, len(models.Categories))
	for _, category := range models.Categories {
		group := menuCategory{Key: category.Key, Label: category.Label, Items: []models.MenuItem{}}
		for _, item := range available {
			if item.Category == category.Key {
				group.Items = append(group.Items, item)
			}
		}
		if len(group.Items) > 0 {
			categories = append(categories, group)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
