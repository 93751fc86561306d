package fingerprint

// DeviceFingerprint is a noisy, partial observation of one physical device as
// reported by either a browser page or the native app. Every field is optional;
// empty strings and nil pointers mean "not observed".
type DeviceFingerprint struct {
	UserAgent         string         `json:"userAgent,omitempty"`
	Language          string         `json:"language,omitempty"`
	Platform          string         `json:"platform,omitempty"`
	ScreenWidth       *int           `json:"screenWidth,omitempty"`
	ScreenHeight      *int           `json:"screenHeight,omitempty"`
	ScreenColorDepth  *int           `json:"screenColorDepth,omitempty"`
	PixelRatio        *float64       `json:"pixelRatio,omitempty"`
	Timezone          string         `json:"timezone,omitempty"`
	TimezoneOffset    *int           `json:"timezoneOffset,omitempty"`
	CanvasFingerprint string         `json:"canvasFingerprint,omitempty"`
	WebGLFingerprint  map[string]any `json:"webglFingerprint,omitempty"`
	CookieEnabled     *bool          `json:"cookieEnabled,omitempty"`
	DoNotTrack        string         `json:"doNotTrack,omitempty"`

	// Native-only signals.
	OSVersion     string   `json:"osVersion,omitempty"`
	DeviceModel   string   `json:"deviceModel,omitempty"`
	DeviceBrand   string   `json:"deviceBrand,omitempty"`
	DeviceName    string   `json:"deviceName,omitempty"`
	ScreenScale   *float64 `json:"screenScale,omitempty"`
	ScreenDensity *float64 `json:"screenDensity,omitempty"`
}
