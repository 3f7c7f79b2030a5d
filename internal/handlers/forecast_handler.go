package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "portfolio/internal/errors"
	"portfolio/internal/pagination"
	"portfolio/internal/services"
)

// ForecastHandler handles forecast-related requests.
type ForecastHandler struct {
	assetService services.AssetServicer
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(assetService services.AssetServicer) *ForecastHandler {
	return &ForecastHandler{assetService: assetService}
}

// AddForecastRequest represents the request payload for adding a forecast
// to an asset.
type AddForecastRequest struct {
	AssetType       string          `json:"asset_type" binding:"omitempty,min=2,max=100"`
	PredictionDate  time.Time       `json:"prediction_date" binding:"required"`
	PredictedValue  decimal.Decimal `json:"predicted_value" binding:"required"`
	ConfidenceLevel decimal.Decimal `json:"confidence_level" binding:"gte=0,lte=100"`
}

// UpdateForecastRequest represents the request payload for updating a
// forecast. Every field is optional.
type UpdateForecastRequest struct {
	AssetType       *string          `json:"asset_type" binding:"omitempty,min=2,max=100"`
	PredictedValue  *decimal.Decimal `json:"predicted_value"`
	PredictionDate  *time.Time       `json:"prediction_date"`
	ConfidenceLevel *decimal.Decimal `json:"confidence_level" binding:"omitempty,gte=0,lte=100"`
}

// AddForecast handles appending a forecast to an asset.
// @Summary     Add forecast
// @Description Add an AI-generated value forecast to an asset
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Asset ID"
// @Param       request body AddForecastRequest true "Forecast details"
// @Success     201 {object} models.Forecast "Forecast created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/forecasts [post]
func (h *ForecastHandler) AddForecast(c *gin.Context) {
	tenantID, actorID, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	forecast, err := h.assetService.AddForecast(
		c.Request.Context(), tenantID, actorID, assetID,
		req.AssetType, req.PredictionDate, req.PredictedValue, req.ConfidenceLevel,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"forecast": forecast})
}

// UpdateForecast handles a selective update of a forecast's fields.
// @Summary     Update forecast
// @Description Update any subset of a forecast's fields
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id         path string                true "Asset ID"
// @Param       forecastId path string                true "Forecast ID"
// @Param       request    body UpdateForecastRequest true "Fields to update"
// @Success     200 {object} models.Forecast "Updated forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset or forecast not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/forecasts/{forecastId} [put]
func (h *ForecastHandler) UpdateForecast(c *gin.Context) {
	tenantID, actorID, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	forecastID, err := parsePathUUID(c, "forecastId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	forecast, err := h.assetService.UpdateForecast(
		c.Request.Context(), tenantID, actorID, assetID, forecastID,
		req.AssetType, req.PredictedValue, req.PredictionDate, req.ConfidenceLevel,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}

// RemoveForecast handles removing a forecast from an asset. Removing an id
// that is not present succeeds without effect.
// @Summary     Remove forecast
// @Description Remove a forecast from an asset
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id         path string true "Asset ID"
// @Param       forecastId path string true "Forecast ID"
// @Success     204 "Forecast removed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/forecasts/{forecastId} [delete]
func (h *ForecastHandler) RemoveForecast(c *gin.Context) {
	tenantID, actorID, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	forecastID, err := parsePathUUID(c, "forecastId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.assetService.RemoveForecast(c.Request.Context(), tenantID, actorID, assetID, forecastID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAssetForecasts handles listing an asset's forecasts.
// @Summary     Get asset forecasts
// @Description Get a paginated list of forecasts for an asset
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Asset ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Forecast] "Paginated forecasts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/forecasts [get]
func (h *ForecastHandler) GetAssetForecasts(c *gin.Context) {
	tenantID, _, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.assetService.GetAssetForecasts(c.Request.Context(), tenantID, assetID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
