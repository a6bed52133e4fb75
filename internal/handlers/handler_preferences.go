package handlers

import (
	"ggarquitectos-site/internal/middlewares"
	"net/http"
)

func GETDeviceInfoPreference(ctx *middlewares.AppContext) {
	show := ctx.Preferences.ShowDeviceInfo(ctx)
	ctx.WriteJSON(http.StatusOK, DeviceInfoPreference{ShowDeviceInfo: &show})
}

func PUTDeviceInfoPreference(ctx *middlewares.AppContext) {
	var body DeviceInfoPreference
	if err := ctx.DecodeJSON(maxRequestBody, &body); err != nil || body.ShowDeviceInfo == nil {
		ctx.SetJSONError(http.StatusBadRequest, "Bad Request")
		return
	}

	if err := ctx.Preferences.SetShowDeviceInfo(ctx, *body.ShowDeviceInfo); err != nil {
		ctx.Logger.Error("Failed to store preference", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.WriteJSON(http.StatusOK, body)
}
