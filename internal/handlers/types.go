package handlers

type GoogleVerifyRequest struct {
	IDToken string `json:"idToken"`
}

type DeviceInfoPreference struct {
	ShowDeviceInfo *bool `json:"showDeviceInfo"`
}
