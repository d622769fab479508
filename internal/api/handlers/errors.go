package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/core/validation"
	"github.com/archetype/archetype/internal/observability/logger"
)

// validateBody reads the request body and checks it against schema. On
// failure the error envelope is already written and ok is false.
func validateBody(c *gin.Context, v *validation.Validator, schema string) (body []byte, ok bool) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "unable to read request body", err.Error())
		return nil, false
	}

	if err := v.Validate(schema, body); err != nil {
		if ve := validation.GetValidationErrors(err); ve != nil {
			response.Unprocessable(c, "request validation failed", fieldErrors(ve))
			return nil, false
		}
		response.InternalError(c)
		return nil, false
	}
	return body, true
}

func fieldErrors(ve *validation.ValidationErrors) []response.FieldError {
	fields := make([]response.FieldError, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		fields = append(fields, response.FieldError{Name: e.Field, Message: e.Message})
	}
	return fields
}

// invalidUserField names the request field a users value error refers to.
func invalidUserField(err error) (string, bool) {
	switch {
	case errors.Is(err, users.ErrInvalidEmail):
		return "email", true
	case errors.Is(err, users.ErrInvalidFullName):
		return "full_name", true
	case errors.Is(err, users.ErrInvalidPassword):
		return "password", true
	}
	return "", false
}

func internalError(c *gin.Context, base *zap.Logger, msg string, err error) {
	logger.From(c.Request.Context(), base).Error(msg, zap.Error(err))
	_ = c.Error(err)
	response.InternalError(c)
}
