package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fullFingerprint() *DeviceFingerprint {
	return &DeviceFingerprint{
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		Platform:          "Win32",
		ScreenWidth:       intPtr(1920),
		ScreenHeight:      intPtr(1080),
		Timezone:          "Asia/Shanghai",
		CanvasFingerprint: "data:image/png;base64,AAAABBBBCCCCDDDD",
	}
}

func TestSimilarityReflexive(t *testing.T) {
	svc := newTestService(t)
	fp := fullFingerprint()

	require.Equal(t, 1.0, svc.Similarity(fp, fp))

	noCanvas := fullFingerprint()
	noCanvas.CanvasFingerprint = ""
	require.Equal(t, 1.0, svc.Similarity(noCanvas, noCanvas))
}

func TestSimilaritySymmetric(t *testing.T) {
	svc := newTestService(t)
	a := fullFingerprint()
	b := fullFingerprint()
	b.UserAgent = "Android/13 Pixel"
	b.CanvasFingerprint = ""
	c := fullFingerprint()
	c.ScreenHeight = nil
	c.CanvasFingerprint = "data:image/png;base64,AAAABBBBxxxx"

	pairs := [][2]*DeviceFingerprint{{a, b}, {a, c}, {b, c}}
	for _, p := range pairs {
		require.Equal(t, svc.Similarity(p[0], p[1]), svc.Similarity(p[1], p[0]))
	}
}

func TestSimilarityNilInput(t *testing.T) {
	svc := newTestService(t)

	require.Zero(t, svc.Similarity(nil, fullFingerprint()))
	require.Zero(t, svc.Similarity(fullFingerprint(), nil))
	require.Zero(t, svc.Similarity(nil, nil))
}

func TestSimilarityAbsentFieldsNeverMatch(t *testing.T) {
	svc := newTestService(t)

	require.Zero(t, svc.Similarity(&DeviceFingerprint{}, &DeviceFingerprint{}))
}

func TestSimilarityPartialMatch(t *testing.T) {
	svc := newTestService(t)
	a := fullFingerprint()
	a.CanvasFingerprint = ""
	b := fullFingerprint()
	b.CanvasFingerprint = ""
	b.UserAgent = "Android/13 Pixel"

	require.InDelta(t, 0.8, svc.Similarity(a, b), 1e-9)
}

func TestSimilarityCanvasPrefix(t *testing.T) {
	svc := newTestService(t)
	a := fullFingerprint()
	b := fullFingerprint()
	b.CanvasFingerprint = a.CanvasFingerprint[:20] + "-trailing-noise"

	require.Equal(t, 1.0, svc.Similarity(a, b))

	b.CanvasFingerprint = "X" + a.CanvasFingerprint[1:]
	require.InDelta(t, 5.0/6.0, svc.Similarity(a, b), 1e-9)
}

func TestSimilarityShortCanvasIgnored(t *testing.T) {
	svc := newTestService(t)
	a := fullFingerprint()
	a.CanvasFingerprint = "short"
	b := fullFingerprint()
	b.CanvasFingerprint = "other"

	require.Equal(t, 1.0, svc.Similarity(a, b))
}

func TestSimilarityCanvasCountsCharacters(t *testing.T) {
	svc := newTestService(t)
	a := fullFingerprint()
	b := fullFingerprint()

	// 10 characters, 30 bytes: too short to compare.
	a.CanvasFingerprint = strings.Repeat("画", 10)
	b.CanvasFingerprint = "布" + strings.Repeat("画", 9)
	require.Equal(t, 1.0, svc.Similarity(a, b))

	// 21 characters differing at the 20th: inside the compared prefix.
	a.CanvasFingerprint = strings.Repeat("画", 21)
	b.CanvasFingerprint = strings.Repeat("画", 19) + "布" + "画"
	require.InDelta(t, 5.0/6.0, svc.Similarity(a, b), 1e-9)
}
