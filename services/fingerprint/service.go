package fingerprint

import (
	"crypto"
	_ "crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/fx"
)

var Module = fx.Module("fingerprint",
	fx.Provide(
		NewService,
		func(s *Service) Scorer { return s },
	),
)

// ErrDigestUnavailable is returned when the binary was built without the
// MD5 implementation. Nothing can be keyed without it.
var ErrDigestUnavailable = errors.New("fingerprint: md5 digest not available")

// Scorer rates how alike two fingerprints are, in [0,1].
type Scorer interface {
	Similarity(a, b *DeviceFingerprint) float64
}

type Service struct {
	hash crypto.Hash
}

func NewService() (*Service, error) {
	if !crypto.MD5.Available() {
		return nil, ErrDigestUnavailable
	}
	return &Service{hash: crypto.MD5}, nil
}

// DeriveID returns the stable identifier for fp. Browser and native captures
// of the same device converge because every component is normalized first.
// The canvas fingerprint is never part of the ID: native clients cannot
// produce one.
func (s *Service) DeriveID(fp *DeviceFingerprint) string {
	if fp == nil {
		fp = &DeviceFingerprint{}
	}

	var sb strings.Builder
	for _, part := range []string{
		NormalizeUserAgent(fp.UserAgent),
		NormalizePlatform(fp.Platform),
		formatInt(fp.ScreenWidth),
		formatInt(fp.ScreenHeight),
		NormalizeTimezone(fp.Timezone, fp.TimezoneOffset),
	} {
		sb.WriteString(part)
		sb.WriteByte('|')
	}

	h := s.hash.New()
	h.Write([]byte(sb.String()))
	return hex.EncodeToString(h.Sum(nil))
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
