// Package session exposes one trip cost controller over a JSON HTTP API.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/form"
	"github.com/kilianp07/tripcost/core/model"
)

// SuggestionsFunc returns the destinations to display.
type SuggestionsFunc func(ctx context.Context) []string

// StateView is the lifecycle part of View.
type StateView struct {
	Phase        string `json:"phase"`
	SubmissionID uint64 `json:"submission_id"`
	RequestID    string `json:"request_id,omitempty"`
	Message      string `json:"message,omitempty"`
	ShowSuccess  bool   `json:"show_success"`
}

// BreakdownView is the rendered result.
type BreakdownView struct {
	controller.Breakdown
	Lines []controller.Line `json:"lines"`
}

// View is the full session snapshot returned by every endpoint.
type View struct {
	SessionID     string            `json:"session_id"`
	Form          model.TripRequest `json:"form"`
	Valid         bool              `json:"valid"`
	InvalidFields []model.Field     `json:"invalid_fields"`
	CanSubmit     bool              `json:"can_submit"`
	State         StateView         `json:"state"`
	Breakdown     *BreakdownView    `json:"breakdown,omitempty"`
}

type handler struct {
	ctrl        *controller.Controller
	suggestions SuggestionsFunc
}

// NewHandler routes the session API:
//
//	GET  /api/session
//	PUT  /api/session/fields/:name   {"value": "..."}
//	POST /api/session/suggestion     {"destination": "..."}
//	POST /api/session/submit[?wait=true]
//	GET  /api/suggestions
func NewHandler(ctrl *controller.Controller, suggestions SuggestionsFunc) http.Handler {
	h := &handler{ctrl: ctrl, suggestions: suggestions}
	r := httprouter.New()
	r.GET("/api/session", h.getSession)
	r.PUT("/api/session/fields/:name", h.setField)
	r.POST("/api/session/suggestion", h.applySuggestion)
	r.POST("/api/session/submit", h.submit)
	r.GET("/api/suggestions", h.listSuggestions)
	return r
}

func (h *handler) view() View {
	f := h.ctrl.Form()
	invalid := f.InvalidFields()
	if invalid == nil {
		invalid = []model.Field{}
	}
	st := h.ctrl.State()
	v := View{
		SessionID:     h.ctrl.SessionID(),
		Form:          f.Request(),
		Valid:         len(invalid) == 0,
		InvalidFields: invalid,
		CanSubmit:     h.ctrl.CanSubmit(),
		State: StateView{
			Phase:        st.Phase.String(),
			SubmissionID: st.SubmissionID,
			RequestID:    st.RequestID,
			Message:      st.Message,
			ShowSuccess:  st.ShowSuccess,
		},
	}
	if b, ok := h.ctrl.Breakdown(); ok {
		v.Breakdown = &BreakdownView{Breakdown: b, Lines: b.Lines()}
	}
	return v
}

func (h *handler) getSession(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.view())
}

func (h *handler) setField(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Value *string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"value\": string}")
		return
	}
	if err := h.ctrl.Form().SetField(model.Field(ps.ByName("name")), *body.Value); err != nil {
		if errors.Is(err, form.ErrUnknownField) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h *handler) applySuggestion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Destination string `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"destination\": string}")
		return
	}
	h.ctrl.Form().ApplySuggestion(body.Destination)
	writeJSON(w, http.StatusOK, h.view())
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	done, ok := h.ctrl.Submit(r.Context())
	if !ok {
		v := h.view()
		if v.State.Phase == controller.PhaseSubmitting.String() {
			writeJSON(w, http.StatusConflict, v)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, v)
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
			writeJSON(w, http.StatusOK, h.view())
		case <-r.Context().Done():
		}
		return
	}
	writeJSON(w, http.StatusAccepted, h.view())
}

func (h *handler) listSuggestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list := []string{}
	if h.suggestions != nil {
		list = append(list, h.suggestions(r.Context())...)
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
