package fingerprint

const canvasPrefixLen = 20

// Similarity compares the raw (not normalized) comparable fields of a and b
// and returns matches/total. Canvas fingerprints only take part when both are
// longer than canvasPrefixLen characters, and then only their prefixes are
// compared.
func (s *Service) Similarity(a, b *DeviceFingerprint) float64 {
	if a == nil || b == nil {
		return 0
	}

	var matches, total int
	tally := func(equal bool) {
		total++
		if equal {
			matches++
		}
	}

	tally(equalString(a.UserAgent, b.UserAgent))
	tally(equalInt(a.ScreenWidth, b.ScreenWidth))
	tally(equalInt(a.ScreenHeight, b.ScreenHeight))
	tally(equalString(a.Timezone, b.Timezone))
	tally(equalString(a.Platform, b.Platform))

	ca, cb := []rune(a.CanvasFingerprint), []rune(b.CanvasFingerprint)
	if len(ca) > canvasPrefixLen && len(cb) > canvasPrefixLen {
		tally(string(ca[:canvasPrefixLen]) == string(cb[:canvasPrefixLen]))
	}

	if total == 0 {
		return 0
	}
	return float64(matches) / float64(total)
}

func equalString(a, b string) bool {
	return a != "" && b != "" && a == b
}

func equalInt(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}
