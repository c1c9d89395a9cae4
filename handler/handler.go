package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ewintr.nl/ytinsight/fetcher"
)

const unexpectedTitle = "An unexpected server error occurred"

func Index(w http.ResponseWriter) {
	Message(w, http.StatusOK, "ytinsight api")
}

func Message(w http.ResponseWriter, status int, message string, details ...any) {
	response := struct {
		Message string `json:"message"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"message": %q, "details":%q}`, message, marshalErr.Error())
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

// Error writes the {error, message} failure body every endpoint uses.
func Error(w http.ResponseWriter, status int, title string, err error) {
	message := title
	if err != nil {
		message = err.Error()
	}
	response := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{
		Error:   title,
		Message: message,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": %q, "message": %q}`, title, marshalErr.Error())
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

// Failure writes err with the status and title it carries. Untyped errors
// are reported as 500.
func Failure(w http.ResponseWriter, err error) {
	var fe *fetcher.Error
	if !errors.As(err, &fe) {
		Error(w, http.StatusInternalServerError, unexpectedTitle, err)
		return
	}
	status := fe.Status
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	Error(w, status, fe.Title, errors.New(fe.Message()))
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusNotFound, "Not found", fmt.Errorf("%s is not a valid path", r.URL.Path))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	Error(w, http.StatusMethodNotAllowed, "Method not allowed", fmt.Errorf("method %s is not allowed, use %s", r.Method, allowed))
}

const maxBodySize = 10 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(v)
}
