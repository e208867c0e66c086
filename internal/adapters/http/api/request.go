package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/validation"
)

// periodsRequest mirrors the OpenAPI schema of the analysis endpoints. A
// bare JSON array of periods is accepted as well.
type periodsRequest struct {
	Periods []validation.RawPeriod `json:"periods"`
}

// FormKey returns the form field name of f for the period at index
// (zero based), e.g. "AV_1".
func FormKey(f model.Field, index int) string {
	return f.Key() + "_" + strconv.Itoa(index+1)
}

// ReadPeriods decodes the raw periods of a JSON or form encoded request.
// The body is limited to maxBytes.
func ReadPeriods(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]validation.RawPeriod, error) {
	const op = "api.read_periods"
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, WrapKind(op, ErrUnsupportedMedia, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		return decodeJSON(op, r.Body)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(op, err)
		}
		return periodsFromForm(r.PostForm), nil
	default:
		return nil, WrapKind(op, ErrUnsupportedMedia, fmt.Errorf("content type %q", mediaType))
	}
}

func decodeJSON(op string, body io.Reader) ([]validation.RawPeriod, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, bodyError(op, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, WrapKind(op, ErrBadRequest, errors.New("empty body"))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '[' {
		var periods []validation.RawPeriod
		if err := dec.Decode(&periods); err != nil {
			return nil, WrapKind(op, ErrBadRequest, err)
		}
		return periods, nil
	}
	var req periodsRequest
	if err := dec.Decode(&req); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return req.Periods, nil
}

// periodsFromForm reads fields named like FormKey. Absent fields stay
// absent so the validator reports them as missing.
func periodsFromForm(form url.Values) []validation.RawPeriod {
	periods := make([]validation.RawPeriod, model.PeriodCount)
	for i := range periods {
		raw := validation.RawPeriod{}
		for _, f := range append([]model.Field{model.FieldLabel}, model.InputFields()...) {
			if vs, ok := form[FormKey(f, i)]; ok && len(vs) > 0 {
				raw[f.Key()] = strings.TrimSpace(vs[0])
			}
		}
		periods[i] = raw
	}
	return periods
}

func bodyError(op string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return WrapKind(op, ErrBodyTooLarge, err)
	}
	return WrapKind(op, ErrBadRequest, err)
}
