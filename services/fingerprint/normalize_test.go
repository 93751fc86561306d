package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNormalizeUserAgent(t *testing.T) {
	long := strings.Repeat("x", 80)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"native android with model", "Android/13 Pixel 6", "Android/13"},
		{"native ios bare", "iOS/17", "iOS/17"},
		{"windows 10", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", "Windows 10"},
		{"windows 8.1", "Mozilla/5.0 (Windows NT 6.3; WOW64)", "Windows 8.1"},
		{"windows 7", "Mozilla/5.0 (Windows NT 6.1)", "Windows 7"},
		{"windows other", "Mozilla/5.0 (Windows NT 5.1)", "Windows"},
		{"mac os x 10", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macOS 10"},
		{"macintosh only", "Mozilla/5.0 (Macintosh; PPC)", "macOS"},
		{"linux desktop", "Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"android without linux token", "Dalvik/2.1.0 (Android 13)", "Android"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0)", "iOS"},
		{"unknown short", "curl/8.4.0", "curl/8.4.0"},
		{"unknown long truncated", long, long[:50]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeUserAgent(tc.in))
		})
	}
}

func TestNormalizePlatform(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"Win32":        "windows",
		"windows":      "windows",
		"MacIntel":     "macos",
		"Linux x86_64": "linux",
		"android":      "android",
		"iOS":          "ios",
		"Android":      "android",
		"PlayStation":  "PlayStation",
	}

	for in, want := range cases {
		require.Equal(t, want, NormalizePlatform(in), "platform %q", in)
	}
}

func TestNormalizeTimezone(t *testing.T) {
	cases := []struct {
		name   string
		tz     string
		offset *int
		want   string
	}{
		{"iana passthrough", "Europe/Berlin", intPtr(60), "Europe/Berlin"},
		{"offset only shanghai", "", intPtr(480), "Asia/Shanghai"},
		{"offset only tokyo", "", intPtr(540), "Asia/Tokyo"},
		{"offset zero", "", intPtr(0), "UTC"},
		{"offset new york", "", intPtr(-300), "America/New_York"},
		{"offset los angeles", "", intPtr(-480), "America/Los_Angeles"},
		{"offset unmapped positive", "", intPtr(180), "UTC+3"},
		{"offset unmapped negative", "", intPtr(-180), "UTC-3"},
		{"offset beats abbreviation", "PST", intPtr(480), "Asia/Shanghai"},
		{"abbreviation cst", "CST", nil, "Asia/Shanghai"},
		{"abbreviation lowercase", "est", nil, "America/New_York"},
		{"abbreviation gmt", "GMT", nil, "UTC"},
		{"abbreviation unknown", "XYZ", nil, ""},
		{"nothing", "", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeTimezone(tc.tz, tc.offset))
		})
	}
}
