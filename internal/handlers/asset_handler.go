package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "portfolio/internal/errors"
	"portfolio/internal/pagination"
	"portfolio/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService services.AssetServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// CreateAssetRequest represents the request payload for creating an asset.
// Type defaults to "Cash" and Currency to "USD" when omitted.
type CreateAssetRequest struct {
	Type     string          `json:"type" binding:"omitempty,min=2,max=100"`
	Value    decimal.Decimal `json:"value" binding:"required,gt=0"`
	Currency string          `json:"currency" binding:"omitempty,currency_code"`
}

// UpdateAssetRequest represents the request payload for updating an asset.
// Every field is optional; a nil field leaves the stored value untouched.
type UpdateAssetRequest struct {
	Type     *string          `json:"type" binding:"omitempty,min=2,max=100"`
	Value    *decimal.Decimal `json:"value" binding:"omitempty,gt=0"`
	Currency *string          `json:"currency" binding:"omitempty,currency_code"`
}

// SearchAssetsRequest represents the request payload for searching assets.
type SearchAssetsRequest struct {
	pagination.PageRequest
	AssetType string `json:"asset_type" binding:"omitempty,min=2,max=100"`
	OrderBy   string `json:"order_by" binding:"omitempty,oneof=type value last_updated"`
}

// CreateAsset handles creating a new asset.
// @Summary     Create asset
// @Description Create a new asset for the authenticated tenant
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     200 {object} map[string]string "Created asset id"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing permission"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	tenantID, actorID, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), tenantID, actorID, req.Type, req.Value, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": asset.ID})
}

// UpdateAsset handles a selective update of an asset's fields.
// @Summary     Update asset
// @Description Update any subset of an asset's type, value, and currency
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Asset ID"
// @Param       request body UpdateAssetRequest true "Fields to update"
// @Success     200 {object} map[string]string "Updated asset id"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
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

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAsset(c.Request.Context(), tenantID, actorID, assetID, req.Type, req.Value, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": asset.ID})
}

// GetAsset handles retrieving an asset with its forecasts.
// @Summary     Get asset by ID
// @Description Get an asset and its forecasts
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} models.Asset "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
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

	asset, err := h.assetService.GetAssetByID(c.Request.Context(), tenantID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// DeleteAsset handles soft-deleting an asset and its forecasts.
// @Summary     Delete asset
// @Description Soft-delete an asset; its forecasts are removed with it
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     204 "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
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

	if err := h.assetService.DeleteAsset(c.Request.Context(), tenantID, actorID, assetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchAssets handles the paginated asset search.
// @Summary     Search assets
// @Description Get a page of assets with optional type filter, ordered by type unless requested otherwise
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SearchAssetsRequest true "Search parameters"
// @Success     200 {object} pagination.PageResponse[services.AssetResponse] "Paginated assets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/search [post]
func (h *AssetHandler) SearchAssets(c *gin.Context) {
	tenantID, _, err := requestScope(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SearchAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.AssetFilter{AssetType: req.AssetType, OrderBy: req.OrderBy}
	result, err := h.assetService.SearchAssets(c.Request.Context(), tenantID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
