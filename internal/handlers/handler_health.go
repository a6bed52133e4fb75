package handlers

import (
	"ggarquitectos-site/internal/middlewares"
	"net/http"
)

func HandlerHealth(ctx *middlewares.AppContext) {
	ctx.SetJSONStatus(http.StatusOK, "OK")
}
