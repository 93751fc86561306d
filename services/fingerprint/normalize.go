package fingerprint

import (
	"fmt"
	"strings"
)

const maxRawUserAgent = 50

var offsetZones = map[int]string{
	8:  "Asia/Shanghai",
	9:  "Asia/Tokyo",
	0:  "UTC",
	-5: "America/New_York",
	-8: "America/Los_Angeles",
}

// CST is read as China Standard Time; clients in US Central time send an offset.
var abbreviationZones = map[string]string{
	"CST": "Asia/Shanghai",
	"PST": "America/Los_Angeles",
	"EST": "America/New_York",
	"UTC": "UTC",
	"GMT": "UTC",
}

// NormalizeUserAgent reduces a user-agent to a coarse OS bucket so that a
// mobile browser and the installed app land on the same value.
//
// Native clients send "Android/<ver> <model>" or "iOS/<ver> <model>"; only the
// first token is kept.
func NormalizeUserAgent(ua string) string {
	if ua == "" {
		return ""
	}

	if strings.HasPrefix(ua, "Android/") || strings.HasPrefix(ua, "iOS/") {
		if i := strings.IndexByte(ua, ' '); i > 0 {
			return ua[:i]
		}
		return ua
	}

	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "windows"):
		switch {
		case strings.Contains(lower, "windows nt 10.0"), strings.Contains(lower, "windows 10"):
			return "Windows 10"
		case strings.Contains(lower, "windows nt 6.3"), strings.Contains(lower, "windows 8.1"):
			return "Windows 8.1"
		case strings.Contains(lower, "windows nt 6.1"), strings.Contains(lower, "windows 7"):
			return "Windows 7"
		}
		return "Windows"
	case strings.Contains(lower, "mac os x"), strings.Contains(lower, "macintosh"):
		if strings.Contains(lower, "mac os x 10") {
			return "macOS 10"
		}
		return "macOS"
	case strings.Contains(lower, "linux"):
		return "Linux"
	case strings.Contains(lower, "android"):
		return "Android"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		return "iOS"
	}

	r := []rune(ua)
	if len(r) > maxRawUserAgent {
		return string(r[:maxRawUserAgent])
	}
	return ua
}

// NormalizePlatform maps navigator.platform style values ("Win32",
// "MacIntel", "Linux x86_64") and native values ("android", "ios") onto one
// lowercase vocabulary. Unknown values pass through unchanged.
func NormalizePlatform(platform string) string {
	if platform == "" {
		return ""
	}

	lower := strings.ToLower(platform)
	switch {
	case strings.Contains(lower, "win"):
		return "windows"
	case strings.Contains(lower, "mac"):
		return "macos"
	case strings.Contains(lower, "linux"):
		return "linux"
	case lower == "android", lower == "ios":
		return lower
	}
	return platform
}

// NormalizeTimezone resolves a timezone to region/city form. A name already in
// that form wins, then the UTC offset (minutes), then the abbreviation table.
// Unresolvable abbreviations yield "".
func NormalizeTimezone(name string, offsetMinutes *int) string {
	if strings.Contains(name, "/") {
		return name
	}

	if offsetMinutes != nil {
		return offsetZone(*offsetMinutes)
	}

	if name == "" {
		return ""
	}
	return abbreviationZones[strings.ToUpper(name)]
}

func offsetZone(minutes int) string {
	hours := minutes / 60
	if zone, ok := offsetZones[hours]; ok {
		return zone
	}
	return fmt.Sprintf("UTC%+d", hours)
}
