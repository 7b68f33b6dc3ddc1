package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khatirak/SWE-final/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidTitle       = "invalid_title"
	codeInvalidDescription = "invalid_description"
	codeInvalidPrice       = "invalid_price"
	codeInvalidImages      = "invalid_images"
	codeInvalidCondition   = "invalid_condition"
	codeInvalidCategory    = "invalid_category"
	codeInvalidStatus      = "invalid_status"
	codeEmailDomain        = "email_domain_not_allowed"
	codeNameRequired       = "name_required"
	codePhoneRequired      = "phone_required"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeListingValidationError maps listing field validation sentinels to 400
// responses; anything else falls through to the caller's switch.
func writeListingValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrTitleLength):
		writeError(w, http.StatusBadRequest, codeInvalidTitle, err.Error())
	case errors.Is(err, domain.ErrDescriptionLength):
		writeError(w, http.StatusBadRequest, codeInvalidDescription, err.Error())
	case errors.Is(err, domain.ErrNegativePrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrImageCount):
		writeError(w, http.StatusBadRequest, codeInvalidImages, err.Error())
	case errors.Is(err, domain.ErrInvalidCondition):
		writeError(w, http.StatusBadRequest, codeInvalidCondition, err.Error())
	case errors.Is(err, domain.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, codeInvalidCategory, err.Error())
	default:
		return false
	}
	return true
}
