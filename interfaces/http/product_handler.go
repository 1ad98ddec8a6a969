package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vendor-portal/domain/dto"
	"vendor-portal/infrastructure/logger"
	"vendor-portal/usecase"
)

type IProductHandler interface {
	Submit(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
	ListPending(c *gin.Context)
}

type ProductHandler struct {
	productUsecase usecase.IProductUsecase
}

func NewProductHandler(productUsecase usecase.IProductUsecase) IProductHandler {
	return &ProductHandler{productUsecase: productUsecase}
}

func (h *ProductHandler) Submit(c *gin.Context) {
	var req dto.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	vendorID := c.GetString("user_id")
	product, err := h.productUsecase.Submit(c.Request.Context(), vendorID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Error while creating product"})
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "201", ResponseMessage: "Created", Data: product})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid product id"})
		return
	}
	product, err := h.productUsecase.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Error while fetching product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Product not found"})
		return
	}
	// Vendors can only read their own submissions.
	if c.GetString("role") != "admin" && product.VendorID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: product})
}

func (h *ProductHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := h.productUsecase.ListMine(c.Request.Context(), c.GetString("user_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Error while listing products"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: products})
}

func (h *ProductHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.productUsecase.ListPending(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Error while listing pending products"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: products})
}
