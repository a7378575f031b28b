package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"readrover/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the handler already wrote an
// error response to the client. Returning nil after RespondWithError keeps
// Fiber's error handler from writing a second body.
var errResponseWritten = errors.New("error response already written")

// parseID parses a numeric route parameter. On failure it writes a 400
// response and returns errResponseWritten; callers should `return nil`.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Invalid %s", humanizeParam(param))))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route param name like "commentId" into "comment ID".
func humanizeParam(param string) string {
	words := splitCamel(param)
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, strings.ToLower(s[start:i]))
			start = i
		}
	}
	words = append(words, strings.ToLower(s[start:]))
	return words
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(c *fiber.Ctx, defaultLimit, maxLimit int) (limit, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// serviceError translates service-layer AppError codes into HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeValidation:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized:
		status = fiber.StatusForbidden
	case models.CodeNotFound, models.CodeNoSuchRequest:
		status = fiber.StatusNotFound
	case models.CodeAlreadyRequested, models.CodeAlreadyFriends:
		status = fiber.StatusConflict
	}
	return models.RespondWithError(c, status, appErr)
}

// currentUserID reads the authenticated user's ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
