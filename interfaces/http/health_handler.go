package http

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendor-portal/domain/dto"
)

type IHealthHandler interface {
	Health(c *gin.Context)
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) IHealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "unavailable"
	} else if err := h.db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "down"
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "OK",
		Data:            gin.H{"database": dbStatus},
	})
}
