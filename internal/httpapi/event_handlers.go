package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gatherly.org/internal/audit"
	"gatherly.org/internal/auth"
	"gatherly.org/internal/event"
	"gatherly.org/internal/obs"
	"gatherly.org/internal/stream"
)

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEvents(w, r)
	case http.MethodPost:
		a.createEvent(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/events/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/register") {
		id := strings.TrimSuffix(path, "/register")
		id = strings.TrimSuffix(id, "/")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "event not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.registerForEvent(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getEvent(w, r, path)
	case http.MethodPut, http.MethodPatch:
		a.updateEvent(w, r, path)
	case http.MethodDelete:
		a.deleteEvent(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := a.events.List(r.Context())
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": events,
		"as_of": time.Now().UTC(),
	})
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, id string) {
	ev, err := a.events.Get(r.Context(), id)
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, auth.RoleOrganizer)
	if !ok {
		return
	}

	var fields event.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := a.events.Create(r.Context(), identity, fields)
	if err != nil {
		handleEventError(w, r, err)
		return
	}

	a.publishActivity(stream.Activity{
		Type:      "event.created",
		EventID:   ev.ID,
		Title:     ev.Title,
		UserID:    identity.UserID,
		Timestamp: time.Now().UTC(),
	})
	_ = audit.LogEvent(r.Context(), "event.create", map[string]any{
		"event_id": ev.ID,
		"title":    ev.Title,
	})

	w.Header().Set("Location", "/v1/events/"+ev.ID)
	writeJSON(w, http.StatusCreated, ev)
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var upd event.Update
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := a.events.Update(r.Context(), identity, id, upd)
	if err != nil {
		handleEventError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "event.update", map[string]any{
		"event_id": ev.ID,
	})
	writeJSON(w, http.StatusOK, ev)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := a.events.Delete(r.Context(), identity, id); err != nil {
		handleEventError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "event.delete", map[string]any{
		"event_id": id,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "event deleted"})
}

func (a *API) registerForEvent(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	ev, err := a.events.Register(r.Context(), identity, id)
	if err != nil {
		handleEventError(w, r, err)
		return
	}

	obs.CountRegistration()
	a.publishActivity(stream.Activity{
		Type:      "event.registered",
		EventID:   ev.ID,
		Title:     ev.Title,
		UserID:    identity.UserID,
		Timestamp: time.Now().UTC(),
	})
	_ = audit.LogEvent(r.Context(), "event.register", map[string]any{
		"event_id":     ev.ID,
		"participants": len(ev.Participants),
	})

	writeJSON(w, http.StatusOK, ev)
}

func (a *API) publishActivity(act stream.Activity) {
	if a.stream == nil {
		return
	}
	a.stream.Publish(act)
}

func handleEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, event.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, event.ErrAlreadyRegistered):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, event.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, event.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
