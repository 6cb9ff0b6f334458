package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/page"
)

// Messages returned alongside successful lookups.
const (
	msgWordsFound    = "Here's the 3 magic words to your location"
	msgLocationFound = "Here's the location pointed by your 3 magic words"
)

// WordsHandler proxies a coordinate lookup: GET /v1/words?lat=..&lon=..
func WordsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := domain.ParseCoordinate(c.Query("lat"))
		if err != nil {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid Latitude")
		}
		lon, err := domain.ParseCoordinate(c.Query("lon"))
		if err != nil {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid Longitude")
		}

		res, err := deps.API.WordsForCoordinates(c.UserContext(), lat, lon)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("words proxy failed", "lat", lat, "lon", lon, "error", err)
			return errLookup(c, err, page.MsgWordsFailed)
		}
		return c.JSON(domain.Envelope[*domain.GeoVocabResult]{
			Message: msgWordsFound,
			Status:  fiber.StatusOK,
			Data:    res,
		})
	}
}

// LocationHandler proxies a phrase lookup: GET /v1/location?words=..
func LocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		words := strings.TrimSpace(c.Query("words"))
		if words == "" {
			return envelopeError(c, fiber.StatusBadRequest, "words is required")
		}

		res, err := deps.API.LocationForWords(c.UserContext(), words)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("location proxy failed", "words", words, "error", err)
			return errLookup(c, err, page.MsgLocationFailed)
		}
		return c.JSON(domain.Envelope[*domain.GeoVocabResult]{
			Message: msgLocationFound,
			Status:  fiber.StatusOK,
			Data:    res,
		})
	}
}
