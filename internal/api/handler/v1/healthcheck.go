package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthcheck godoc
// @Summary      Healthcheck endpoint
// @Tags         healthcheck
// @Produce      json
// @Success      200 {string} string "OK"
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}
