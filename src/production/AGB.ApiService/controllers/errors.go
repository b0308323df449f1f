package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// respondError maps the domain error taxonomy to HTTP statuses:
// ValidationError and ThresholdRejection to 400, NotFoundError to 404,
// anything else (store failures included) to 500 with a generic body.
func respondError(ctx *gin.Context, log *logger.Logger, err error) {
	var validation *agbmodels.ValidationError
	var notFound *agbmodels.NotFoundError
	var rejection *agbmodels.ThresholdRejection

	switch {
	case errors.As(err, &validation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &rejection):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": rejection.Msg})
	case errors.As(err, &notFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": notFound.Msg})
	default:
		log.ErrorWithError(err, "request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
