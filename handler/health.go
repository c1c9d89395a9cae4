package handler

import (
	"net/http"
	"time"
)

type HealthAPI struct {
	now func() time.Time
}

func NewHealthAPI(now func() time.Time) *HealthAPI {
	return &HealthAPI{now: now}
}

func (h *HealthAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sub == "" && r.Method == http.MethodGet:
		JSON(w, http.StatusOK, struct {
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
		}{
			Status:    "ok",
			Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	case sub == "":
		MethodNotAllowed(w, r, http.MethodGet)
	default:
		NotFound(w, r)
	}
}
