package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kopiaku-backend/services"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

// respondServiceError memetakan error taxonomy dari services ke HTTP status.
func respondServiceError(c *gin.Context, err error) {
	var (
		notFound      *services.NotFoundError
		insufficient  *services.InsufficientStockError
		alreadyExists *services.RecipeAlreadyExistsError
		inUse         *services.StockInUseError
		notAvailable  *services.MenuNotAvailableError
		invalidStatus *services.InvalidStatusError
		validation    *services.ValidationError
	)

	switch {
	case errors.As(err, &notFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &insufficient):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &alreadyExists):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &inUse):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &notAvailable):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &invalidStatus):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &validation):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
