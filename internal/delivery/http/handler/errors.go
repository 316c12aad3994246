package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"triage-waitlist/internal/usecase"
	"triage-waitlist/pkg/response"

	"github.com/gorilla/mux"
)

// writeUsecaseError maps the usecase error taxonomy onto HTTP statuses
func writeUsecaseError(w http.ResponseWriter, err error, failureMessage string) {
	var validationErr *usecase.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	default:
		response.InternalServerError(w, failureMessage)
	}
}

func patientIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeOptionalBody decodes a JSON body into dst; an empty body leaves dst untouched
func decodeOptionalBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
