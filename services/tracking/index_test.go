package tracking

import (
	"testing"

	"deeplink-attribution/services/fingerprint"

	"github.com/stretchr/testify/require"
)

func TestIndexKey(t *testing.T) {
	cases := []struct {
		name string
		fp   *fingerprint.DeviceFingerprint
		want string
	}{
		{"full", webFingerprint(), "Win32:1920x1080:Asia/Shanghai"},
		{"raw values kept", &fingerprint.DeviceFingerprint{Platform: "android", ScreenWidth: intPtr(1080), ScreenHeight: intPtr(2400), Timezone: "CST"}, "android:1080x2400:CST"},
		{"missing fields", &fingerprint.DeviceFingerprint{Platform: "iOS"}, "iOS:x:"},
		{"nil", nil, ":x:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IndexKey(tc.fp))
		})
	}
}
