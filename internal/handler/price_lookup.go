package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const priceCacheTTL = 4 * time.Hour

// PriceLookupHandler serves the public price check endpoint.
// No authentication and no side effects beyond the cache.
type PriceLookupHandler struct {
	svc service.ProductService
	rdb *redis.Client // nil disables the cache
}

func NewPriceLookupHandler(svc service.ProductService, rdb *redis.Client) *PriceLookupHandler {
	return &PriceLookupHandler{svc: svc, rdb: rdb}
}

// GetByBarcode godoc
// @Summary Price check by barcode (no authentication)
// @Tags price
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.PriceLookupResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *PriceLookupHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := service.PriceCacheKey(barcode)

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.PriceLookupResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	p, err := h.svc.GetByBarcode(ctx, barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.IsActive {
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeProductNotFound, "product not found"))
		return
	}

	resp := dto.PriceLookupResponse{Name: p.Name, SKU: p.SKU, Price: p.Price, InStock: p.StockQuantity}

	// Best effort; a failed write only costs the next lookup a DB round trip.
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			if err := h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("barcode", barcode).Msg("price cache write failed")
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
