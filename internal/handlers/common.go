// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

// parseID reads the :id path parameter. A malformed id answers 400 with the
// given message key.
func parseID(c *gin.Context, invalidKey string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", i18n.T(lang, invalidKey), nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes a strict JSON body and runs struct validation.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// respondError maps service errors onto the uniform error body.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case utils.IsValidationError(err):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, i18n.KeyOrderNotFound)
	case errors.Is(err, services.ErrImageRequired):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyFileRequired), nil)
	case errors.Is(err, models.ErrUnknownOrderStatus):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyOrderInvalidStatus), err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", i18n.T(lang, i18n.KeyOrderInvalidTransition), err.Error())
	case errors.Is(err, services.ErrInsufficientStock):
		utils.ErrorResponse(c, http.StatusConflict, "INSUFFICIENT_STOCK", i18n.T(lang, i18n.KeyProductOutOfStock), err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.T(lang, i18n.KeyAuthInvalidCredentials), nil)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyServerError), err)
	}
}
