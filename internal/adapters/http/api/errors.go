package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/bilanz/internal/adapters/render"
	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrBodyTooLarge     = errors.New("request body too large")
)

// KindError ties an operation to an error kind and its cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns an error of kind raised by op, caused by err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Is(target error) bool { return target == e.Kind }

func (e *KindError) Unwrap() error { return e.Err }

// Failure is the HTTP representation of an error.
type Failure struct {
	Status int
	Body   errorResponse
}

// Classify maps pipeline and request errors to a status and a stable code.
func Classify(err error) Failure {
	var (
		verr *model.ValidationError
		derr *model.DivisionByZeroError
		oerr *model.OverflowError
	)
	switch {
	case errors.As(err, &verr):
		return Failure{http.StatusBadRequest, errorResponse{
			Code: "validation_error", Message: err.Error(), Period: verr.Period, Field: verr.Field.Key(),
		}}
	case errors.Is(err, model.ErrValidation):
		return Failure{http.StatusBadRequest, errorResponse{Code: "validation_error", Message: err.Error()}}
	case errors.As(err, &derr):
		return Failure{http.StatusUnprocessableEntity, errorResponse{
			Code: "division_by_zero", Message: err.Error(), Period: derr.Period,
			Ratio: derr.Ratio.Key(), Denominator: derr.Denominator,
		}}
	case errors.As(err, &oerr):
		return Failure{http.StatusUnprocessableEntity, errorResponse{
			Code: "overflow", Message: err.Error(), Period: oerr.Period, Ratio: oerr.Ratio.Key(),
		}}
	case errors.Is(err, render.ErrRender):
		return Failure{http.StatusInternalServerError, errorResponse{Code: "render_error", Message: err.Error()}}
	case errors.Is(err, ErrBodyTooLarge):
		return Failure{http.StatusRequestEntityTooLarge, errorResponse{Code: "body_too_large", Message: err.Error()}}
	case errors.Is(err, ErrUnsupportedMedia):
		return Failure{http.StatusUnsupportedMediaType, errorResponse{Code: "unsupported_media_type", Message: err.Error()}}
	case errors.Is(err, ErrBadRequest):
		return Failure{http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error()}}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Failure{http.StatusServiceUnavailable, errorResponse{Code: "cancelled", Message: err.Error()}}
	default:
		return Failure{http.StatusInternalServerError, errorResponse{Code: "internal", Message: http.StatusText(http.StatusInternalServerError)}}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	f := Classify(err)
	f.Body.RequestID = logger.RequestID(r.Context())
	if f.Status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("code", f.Body.Code), logger.Error(err))
	}
	writeJSON(w, f.Status, f.Body)
}
