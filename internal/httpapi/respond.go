package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error kinds distinguish client-caused failures from dependency failures.
const (
	kindUnsupportedLanguage  = "unsupported_language"
	kindInvalidParameter     = "invalid_parameter"
	kindUnreadableImage      = "unreadable_image"
	kindGenerationTimeout    = "generation_timeout"
	kindGenerationParseError = "generation_parse_error"
	kindInternal             = "internal_error"
)

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respondError(c echo.Context, status int, kind, message string, detail map[string]any) error {
	return c.JSON(status, errorEnvelope{
		Error: errorBody{
			Kind:    kind,
			Message: message,
			Detail:  detail,
		},
	})
}

func internalError(c echo.Context, message string) error {
	return respondError(c, http.StatusInternalServerError, kindInternal, message, nil)
}
