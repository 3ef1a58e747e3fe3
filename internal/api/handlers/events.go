package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/townboard/server/internal/api/middleware"
	"github.com/townboard/server/internal/api/render"
	"github.com/townboard/server/internal/api/weberr"
	"github.com/townboard/server/internal/domain/events"
	"github.com/townboard/server/internal/metrics"
)

type EventsHandler struct {
	Service  *events.Service
	Renderer *render.Renderer
}

func NewEventsHandler(service *events.Service, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{Service: service, Renderer: renderer}
}

// List handles GET / and GET /index.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		weberr.Write(w, r, http.StatusInternalServerError, "Could not load events", err)
		return
	}

	data := map[string]any{
		"Events": items,
	}
	if claims := middleware.SessionClaims(r); claims != nil {
		data["Username"] = claims.Username
		data["Message"] = "You are logged in as " + claims.Username + "."
	}
	h.Renderer.Page(w, r, "events.html", data)
}

// NewForm handles GET /events/new.
func (h *EventsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"CSRFField": template.HTML(middleware.CSRFTemplateField(r)),
		"Name":      "",
		"Date":      "",
		"Organizer": "",
	}
	if claims := middleware.SessionClaims(r); claims != nil {
		data["Username"] = claims.Username
	}
	h.Renderer.Page(w, r, "new_event.html", data)
}

// Create handles POST /events/new.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := parseEventForm(r)
	if err != nil {
		var formErr FormError
		if errors.As(err, &formErr) {
			data := map[string]any{
				"Errors":    formErr.Fields,
				"Name":      form.Name,
				"Date":      form.Date,
				"Organizer": form.Organizer,
				"CSRFField": template.HTML(middleware.CSRFTemplateField(r)),
			}
			if claims := middleware.SessionClaims(r); claims != nil {
				data["Username"] = claims.Username
			}
			w.WriteHeader(http.StatusBadRequest)
			h.Renderer.Page(w, r, "new_event.html", data)
			return
		}
		weberr.Write(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}

	organizer := form.Organizer
	if claims := middleware.SessionClaims(r); claims != nil {
		organizer = claims.Username
	}

	if _, err := h.Service.Create(r.Context(), form.Name, form.Date, organizer); err != nil {
		var dateErr events.DateError
		if errors.As(err, &dateErr) {
			weberr.Write(w, r, http.StatusBadRequest, dateErr.Error(), err)
			return
		}
		weberr.Write(w, r, http.StatusInternalServerError, "Could not save event", err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	http.Redirect(w, r, "/", http.StatusFound)
}

// Get handles GET /events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			weberr.Write(w, r, http.StatusNotFound, "Event not found", err)
			return
		}
		weberr.Write(w, r, http.StatusInternalServerError, "Could not load event", err)
		return
	}

	data := map[string]any{
		"Event": event,
	}
	if claims := middleware.SessionClaims(r); claims != nil {
		data["CanDelete"] = claims.Username == event.Organizer
	}
	h.Renderer.Page(w, r, "event.html", data)
}

// Delete handles GET /events/delete/{id}. The ownership check lives in the
// service so the legacy-compat flag applies uniformly.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	requester := ""
	if claims := middleware.SessionClaims(r); claims != nil {
		requester = claims.Username
	}

	if _, err := h.Service.Delete(r.Context(), id, requester); err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			weberr.Write(w, r, http.StatusNotFound, "Event not found", err)
		case errors.Is(err, events.ErrForbidden):
			weberr.Write(w, r, http.StatusForbidden, "Only the organizer can delete this event", err)
		default:
			weberr.Write(w, r, http.StatusInternalServerError, "Could not delete event", err)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// MyEvents handles GET /events/myevents. The route is wrapped in
// RequireSession, so the claims are always present here.
func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionClaims(r)
	if claims == nil {
		weberr.Write(w, r, http.StatusUnauthorized, "You must be logged in to view this page.", nil)
		return
	}

	items, err := h.Service.ListByOrganizer(r.Context(), claims.Username)
	if err != nil {
		weberr.Write(w, r, http.StatusInternalServerError, "Could not load events", err)
		return
	}

	h.Renderer.Page(w, r, "my_events.html", map[string]any{
		"Username": claims.Username,
		"Events":   items,
	})
}
