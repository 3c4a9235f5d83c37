package handlers

import (
	"errors"
	"net/http"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/darisadam/cardbrand/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BinRangeHandler struct {
	binRangeService service.BinRangeService
}

func NewBinRangeHandler(binRangeService service.BinRangeService) *BinRangeHandler {
	return &BinRangeHandler{
		binRangeService: binRangeService,
	}
}

// CreateRange godoc
// @Summary Create BIN range
// @Description Register an issuer range for a brand. Bounds shorter than eight digits are widened.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body binlookup.CreateBinRangeRequest true "Range details"
// @Success 201 {object} binlookup.BinRange
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/bin-ranges [post]
func (h *BinRangeHandler) CreateRange(c *gin.Context) {
	var req binlookup.CreateBinRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.binRangeService.CreateRange(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create bin range"})
		return
	}

	c.JSON(http.StatusCreated, r)
}

// ListRanges godoc
// @Summary List BIN ranges
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/admin/bin-ranges [get]
func (h *BinRangeHandler) ListRanges(c *gin.Context) {
	var req binlookup.ListBinRangesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranges, err := h.binRangeService.ListRanges(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bin ranges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bin_ranges": ranges})
}

// DeleteRange godoc
// @Summary Delete BIN range
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Range ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/bin-ranges/{id} [delete]
func (h *BinRangeHandler) DeleteRange(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bin range id"})
		return
	}

	if err := h.binRangeService.DeleteRange(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrBinRangeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete bin range"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "BIN range deleted successfully"})
}
