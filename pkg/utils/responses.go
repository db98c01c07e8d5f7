package utils

import (
	"net/http"

	"github.com/go-chi/render"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, r *http.Request, code int, status bool, message string, data, errors any) {
	render.Status(r, code)
	render.JSON(w, r, Response{
		Status:  status,
		Message: message,
		Data:    data,
		Errors:  errors,
	})
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	ResponseJSON(w, r, http.StatusOK, true, message, data, nil)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, r *http.Request, message string, data any) {
	ResponseJSON(w, r, http.StatusCreated, true, message, data, nil)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, r *http.Request, message string, errors any) {
	ResponseJSON(w, r, http.StatusBadRequest, false, message, nil, errors)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	ResponseJSON(w, r, http.StatusUnauthorized, false, message, nil, nil)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, r *http.Request, message string) {
	ResponseJSON(w, r, http.StatusForbidden, false, message, nil, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, r *http.Request, message string) {
	ResponseJSON(w, r, http.StatusInternalServerError, false, message, nil, nil)
}
