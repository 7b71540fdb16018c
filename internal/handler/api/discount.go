package api

import (
	"net/http"

	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/handler/httperr"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/commands"
	"solestore/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DiscountHandler struct {
	discountCommands commands.DiscountCommands
	discountQueries  queries.DiscountQueries
}

func NewDiscountHandler(discountCommands commands.DiscountCommands, discountQueries queries.DiscountQueries) *DiscountHandler {
	return &DiscountHandler{
		discountCommands: discountCommands,
		discountQueries:  discountQueries,
	}
}

// @Summary Validate a discount code
// @Description Pure preview against a hypothetical total; nothing is claimed
// @Tags discounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ValidateDiscountRequest true "Code and order total"
// @Success 200 {object} queries.DiscountPreview
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /discounts/validate [post]
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req reqdto.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	preview, err := h.discountQueries.Validate(c.Request.Context(), req.Code, req.Total)
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrDiscountNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Discount code not found",
			})
		case errs.Is(err, queries.ErrDiscountNotUsable):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Discount code is not valid at this time",
			})
		case errs.Is(err, queries.ErrDiscountBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Order total is below the discount code minimum",
			})
		case errs.Is(err, queries.ErrDiscountUsageLimit):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Discount code usage limit reached",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, preview)
}

// @Summary List discount codes
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.DiscountView
// @Router /admin/discounts [get]
func (h *DiscountHandler) List(c *gin.Context) {
	views, err := h.discountQueries.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Create discount code
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateDiscountRequest true "Discount definition"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/discounts [post]
func (h *DiscountHandler) Create(c *gin.Context) {
	var req reqdto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.discountCommands.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrDiscountCodeExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Discount code already exists",
			})
		case errs.Is(err, commands.ErrInvalidDiscount):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid discount definition",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// @Summary Update discount code
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Discount code ID"
// @Param request body reqdto.UpdateDiscountRequest true "Discount definition"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/discounts/{id} [put]
func (h *DiscountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid discount code ID format",
		})
		return
	}

	var req reqdto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.discountCommands.Update(c.Request.Context(), id, req); err != nil {
		switch {
		case errs.Is(err, commands.ErrDiscountNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Discount code not found",
			})
		case errs.Is(err, commands.ErrDiscountCodeExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Discount code already exists",
			})
		case errs.Is(err, commands.ErrInvalidDiscount):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid discount definition",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Delete discount code
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Discount code ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/discounts/{id} [delete]
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid discount code ID format",
		})
		return
	}

	if err := h.discountCommands.Delete(c.Request.Context(), id); err != nil {
		if errs.Is(err, commands.ErrDiscountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Discount code not found",
			})
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}
