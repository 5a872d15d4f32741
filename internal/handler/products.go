package handler

import (
	"errors"
	"net/http"

	"inventapro/internal/apierror"
	"inventapro/internal/dto"
	"inventapro/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name   query  string  false  "Name contains"
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Page size"
// @Success      200  {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      200  {object} dto.ProductResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if !h.check(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Barcode godoc
// @Summary      Product barcode image
// @Tags         products
// @Produce      png
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      200  {file} binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id}/barcode [get]
func (h *ProductsHandler) Barcode(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	png, err := h.svc.BarcodePNG(c.Request.Context(), id)
	if !h.check(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// BarcodeLabel godoc
// @Summary      Printable barcode label
// @Tags         products
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      200  {file} binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id}/barcode-label [get]
func (h *ProductsHandler) BarcodeLabel(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.svc.BarcodeLabelPDF(c.Request.Context(), id)
	if !h.check(c, err) {
		return
	}
	c.Header("Content-Disposition", `inline; filename="label-`+id.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *ProductsHandler) check(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
	default:
		c.Error(err)
	}
	return false
}
