package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/jimlawless/whereami"
)

const maxRequestBodySize = 10 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrUnknownUpdateKind):
		return http.StatusBadRequest, e.ErrUnknownUpdateKind.Error()
	case errors.Is(err, e.ErrUnsupportedMarket):
		return http.StatusBadRequest, e.ErrUnsupportedMarket.Error()
	case errors.Is(err, e.ErrHistoryNotFound):
		return http.StatusNotFound, e.ErrHistoryNotFound.Error()
	case errors.Is(err, e.ErrAccountNotFound):
		return http.StatusNotFound, e.ErrAccountNotFound.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// stageStatus выбирает HTTP-статус по итогу этапа. Частичный успех отдаётся как 207.
func stageStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case e.IsPartial(err):
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst, отклоняя неизвестные поля.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return e.Wrap(whereami.WhereAmI(), e.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}
