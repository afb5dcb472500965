package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"kalaghar.in/lokakala/internal/language"
	"kalaghar.in/lokakala/internal/persist"
	"kalaghar.in/lokakala/internal/translation"
	"kalaghar.in/lokakala/internal/vision"
)

type generateResponse struct {
	ArtName         string            `json:"art_name"`
	ArtStyle        string            `json:"art_style"`
	Region          string            `json:"region"`
	Question        string            `json:"question,omitempty"`
	English         string            `json:"english"`
	Translations    map[string]string `json:"translations"`
	FailedLanguages map[string]string `json:"failed_languages,omitempty"`
}

// handleGenerate is creator mode: identify the art form, write a description
// shaped by length/audience/tone, translate, cache.
func (s *Server) handleGenerate(c echo.Context) error {
	requested, ok := s.parseLanguagesOrFail(c)
	if !ok {
		return nil
	}

	length, err := vision.ParseLength(c.QueryParam("length"))
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid length parameter", map[string]any{"length": err.Error()})
	}
	audience, err := vision.ParseAudience(c.QueryParam("audience"))
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid audience parameter", map[string]any{"audience": err.Error()})
	}
	tone, err := vision.ParseTone(c.QueryParam("tone"))
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid tone parameter", map[string]any{"tone": err.Error()})
	}

	img, err := readImageUpload(c)
	if err != nil {
		return s.respondUploadError(c, err)
	}

	ctx := c.Request().Context()
	desc, err := s.describer.DescribeCreator(ctx, img, vision.CreatorParams{
		Length:   length,
		Audience: audience,
		Tone:     tone,
	})
	if err != nil {
		return s.respondGenerationError(c, err)
	}

	return s.respondResolved(c, desc, requested, nil)
}

// handleGenerateHistory is scholar mode: answer a historical or cultural
// question about the artwork, translate the answer, cache keyed on it.
func (s *Server) handleGenerateHistory(c echo.Context) error {
	requested, ok := s.parseLanguagesOrFail(c)
	if !ok {
		return nil
	}

	question := strings.TrimSpace(c.QueryParam("question"))
	if question == "" {
		question = vision.DefaultQuestion
	}

	img, err := readImageUpload(c)
	if err != nil {
		return s.respondUploadError(c, err)
	}

	ctx := c.Request().Context()
	desc, err := s.describer.DescribeScholar(ctx, img, question)
	if err != nil {
		return s.respondGenerationError(c, err)
	}

	return s.respondResolved(c, desc, requested, &question)
}

// respondResolved runs translation resolution, schedules the deferred write
// and renders the success payload. question != nil marks scholar mode.
func (s *Server) respondResolved(c echo.Context, desc vision.Description, requested []language.Code, question *string) error {
	ctx := c.Request().Context()

	result, err := s.resolver.Resolve(ctx, desc.English, requested, translation.ResolveOptions{})
	if err != nil {
		s.logger.Error().Err(err).Msg("translation resolution failed")
		return internalError(c, "Translation resolution failed")
	}

	save := persist.SaveRequest{
		English:      desc.English,
		ArtName:      desc.ArtName,
		ArtStyle:     desc.ArtStyle,
		Region:       desc.Region,
		Question:     question,
		Translations: result.Translations,
		Existing:     result.Existing,
	}
	if err := s.persister.Enqueue(save); err != nil {
		// The response is already complete; persistence failures stay
		// operational, never client-facing.
		s.logger.Error().Err(err).Msg("failed to schedule persistence")
	}

	resp := generateResponse{
		ArtName:      desc.ArtName,
		ArtStyle:     desc.ArtStyle,
		Region:       desc.Region,
		English:      desc.English,
		Translations: make(map[string]string, len(result.Translations)),
	}
	if question != nil {
		resp.Question = *question
	}
	for lang, text := range result.Translations {
		resp.Translations[string(lang)] = text
	}
	if len(result.Failed) > 0 {
		resp.FailedLanguages = make(map[string]string, len(result.Failed))
		for lang, msg := range result.Failed {
			resp.FailedLanguages[string(lang)] = msg
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) parseLanguagesOrFail(c echo.Context) ([]language.Code, bool) {
	requested, err := language.ParseList(c.QueryParam("languages"))
	if err != nil {
		var unsupported *language.UnsupportedError
		if errors.As(err, &unsupported) {
			_ = respondError(c, http.StatusUnprocessableEntity, kindUnsupportedLanguage,
				"Unsupported language(s) requested", map[string]any{
					"unsupported": unsupported.Unsupported,
					"supported":   unsupported.Supported,
				})
			return nil, false
		}
		_ = respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid languages parameter", nil)
		return nil, false
	}
	return requested, true
}

func (s *Server) respondUploadError(c echo.Context, err error) error {
	if errors.Is(err, errUnreadableImage) {
		return respondError(c, http.StatusUnprocessableEntity, kindUnreadableImage,
			"Cannot open uploaded file as an image", nil)
	}
	s.logger.Error().Err(err).Msg("reading upload failed")
	return internalError(c, "Failed to read upload")
}

func (s *Server) respondGenerationError(c echo.Context, err error) error {
	if errors.Is(err, vision.ErrTimeout) {
		return respondError(c, http.StatusGatewayTimeout, kindGenerationTimeout,
			"Vision model call timed out; please retry", nil)
	}
	var parseErr *vision.ParseError
	if errors.As(err, &parseErr) {
		s.logger.Error().Err(err).Msg("vision model output violated contract")
		return respondError(c, http.StatusInternalServerError, kindGenerationParseError,
			"Vision model returned malformed output", nil)
	}
	s.logger.Error().Err(err).Msg("generation failed")
	return internalError(c, "Generation failed")
}
