package featureflags

import (
	"context"
	"time"

	"deeplink-attribution/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

const environmentKey = "environment"

type FeatureFlag interface {
	Features(ctx context.Context) ([]flagsmith.Flag, error)
	// Enabled reports the state of name, falling back to def when the flag
	// is unknown or the provider cannot be reached.
	Enabled(ctx context.Context, name string, def bool) bool
}

type featureflag struct {
	fetch func() ([]flagsmith.Flag, error)
	cache *expirable.LRU[string, []flagsmith.Flag]
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}
	client := flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...)

	return newFeatureFlag(func() ([]flagsmith.Flag, error) {
		flags, err := client.GetEnvironmentFlags()
		if err != nil {
			return nil, err
		}
		return flags.AllFlags(), nil
	}, p.Config.Flagsmith.CacheTTL)
}

// newFeatureFlag serves environment flags from fetch, keeping successful
// results for ttl. A non-positive ttl fetches on every call.
func newFeatureFlag(fetch func() ([]flagsmith.Flag, error), ttl time.Duration) *featureflag {
	ff := &featureflag{fetch: fetch}
	if ttl > 0 {
		ff.cache = expirable.NewLRU[string, []flagsmith.Flag](1, nil, ttl)
	}
	return ff
}

func (s *featureflag) Features(ctx context.Context) ([]flagsmith.Flag, error) {
	if s.fetch == nil {
		return nil, nil
	}

	if s.cache != nil {
		if flags, ok := s.cache.Get(environmentKey); ok {
			return flags, nil
		}
	}

	flags, err := s.fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(environmentKey, flags)
	}
	return flags, nil
}

func (s *featureflag) Enabled(ctx context.Context, name string, def bool) bool {
	flags, err := s.Features(ctx)
	if err != nil {
		zap.L().Warn("feature flags unavailable, using default", zap.String("flag", name), zap.Bool("default", def), zap.Error(err))
		return def
	}
	return lookup(flags, name, def)
}

func lookup(flags []flagsmith.Flag, name string, def bool) bool {
	for _, f := range flags {
		if f.FeatureName == name {
			return f.Enabled
		}
	}
	return def
}
