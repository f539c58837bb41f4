package handlers

import (
	"net/http"

	"github.com/AlazarStudio/lfl-live/live"
	"github.com/AlazarStudio/lfl-live/services"
)

// LiveHandler — операторские операции живого матча: сессия, события,
// секундомер, завершение, рейтинг MVP.
type LiveHandler struct {
	sessions services.SessionService
}

func NewLiveHandler(sessions services.SessionService) *LiveHandler {
	return &LiveHandler{sessions: sessions}
}

func (h *LiveHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.Open(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sessions.Close(matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LiveHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.RecordEvent(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.EditEvent(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.DeleteEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.sessions.FinishMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) ToggleClock(w http.ResponseWriter, r *http.Request) {
	h.clockOp(w, r, h.sessions.ToggleClock)
}

func (h *LiveHandler) AdvanceHalf(w http.ResponseWriter, r *http.Request) {
	h.clockOp(w, r, h.sessions.AdvanceHalf)
}

func (h *LiveHandler) RetreatHalf(w http.ResponseWriter, r *http.Request) {
	h.clockOp(w, r, h.sessions.RetreatHalf)
}

func (h *LiveHandler) clockOp(w http.ResponseWriter, r *http.Request, op func(int) (live.ClockState, error)) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := op(matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"clock": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.sessions.Ranking(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
