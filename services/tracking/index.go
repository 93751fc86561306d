package tracking

import (
	"strconv"

	"deeplink-attribution/services/fingerprint"
)

// IndexKey buckets a fingerprint as "platform:WxH:timezone" using the raw,
// unnormalized values. Absent values render as "".
func IndexKey(fp *fingerprint.DeviceFingerprint) string {
	if fp == nil {
		return ":x:"
	}
	return fp.Platform + ":" + itoa(fp.ScreenWidth) + "x" + itoa(fp.ScreenHeight) + ":" + fp.Timezone
}

func itoa(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
