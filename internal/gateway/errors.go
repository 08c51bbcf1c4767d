package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ucp-agent/internal/model"
)

// errorResponse covers the error shapes merchants return: {"message": ...},
// {"detail": "..."} and FastAPI-style {"detail": [{"loc": [...], "msg": ...}]}.
type errorResponse struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseErrorResponse maps a non-2xx merchant response to a *model.Error.
func parseErrorResponse(statusCode int, body []byte, resource string) *model.Error {
	var resp errorResponse
	parsed := json.Unmarshal(body, &resp) == nil

	message := resp.Message
	var details []validationDetail
	if parsed && len(resp.Detail) > 0 {
		var s string
		if json.Unmarshal(resp.Detail, &s) == nil {
			if message == "" {
				message = s
			}
		} else if json.Unmarshal(resp.Detail, &details) != nil {
			details = nil
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = "unknown error"
	}

	switch statusCode {
	case 422:
		if len(details) > 0 {
			fields := make([]model.FieldError, 0, len(details))
			for _, d := range details {
				fields = append(fields, fieldError(d))
			}
			return model.NewFieldValidationError(
				fmt.Sprintf("invalid request: %d field(s) have errors", len(fields)), fields)
		}
		return model.NewFieldValidationError(message, nil)
	case 404:
		err := model.NewNotFoundError(resource)
		err.Err = errors.New(message)
		return err
	case 400:
		return model.NewBadRequestError(message)
	default:
		return model.NewTransportError(statusCode, string(body), errors.New(message))
	}
}

func fieldError(d validationDetail) model.FieldError {
	parts := make([]string, 0, len(d.Loc))
	for _, loc := range d.Loc {
		switch v := loc.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, fmt.Sprintf("%d", int64(v)))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	fe := model.FieldError{Field: strings.Join(parts, "."), Message: d.Msg}
	if fe.Field == "" {
		fe.Field = "unknown"
	}
	if fe.Message == "" {
		fe.Message = "invalid"
	}
	return fe
}
