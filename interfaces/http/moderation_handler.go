package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vendor-portal/domain/dto"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/logger"
	"vendor-portal/usecase"
)

type IModerationHandler interface {
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	PublishStatus(c *gin.Context)
	AuditLog(c *gin.Context)
}

type ModerationHandler struct {
	moderationUsecase usecase.IModerationUsecase
	audit             repository.IPublishAudit
}

func NewModerationHandler(moderationUsecase usecase.IModerationUsecase, audit repository.IPublishAudit) IModerationHandler {
	return &ModerationHandler{moderationUsecase: moderationUsecase, audit: audit}
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid product id"})
		return
	}
	var req dto.ModerationRequest
	_ = c.ShouldBindJSON(&req) // note is optional

	result, err := h.moderationUsecase.Approve(c.Request.Context(), id, req)
	if err != nil {
		h.moderationError(c, err)
		return
	}
	// 200 even when the platform push failed: the approval itself succeeded
	// and the result body carries the publish error.
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: result})
}

func (h *ModerationHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid product id"})
		return
	}
	var req dto.ModerationRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.moderationUsecase.Reject(c.Request.Context(), id, req)
	if err != nil {
		h.moderationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: result})
}

func (h *ModerationHandler) PublishStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid product id"})
		return
	}
	result, err := h.moderationUsecase.PublishStatus(c.Request.Context(), id)
	if err != nil {
		h.moderationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: result})
}

func (h *ModerationHandler) AuditLog(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid product id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	audits, err := h.audit.ListByProduct(c.Request.Context(), id, limit)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing publish audits")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Error while listing audits"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: audits})
}

func (h *ModerationHandler) moderationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Product not found"})
	case errors.Is(err, usecase.ErrAlreadyModerated):
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "Product already moderated"})
	default:
		logger.GetLogger().WithField("error", err).Error("Moderation action failed")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal Server Error"})
	}
}
