package tracking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"deeplink-attribution/pkg/errutil"
	"deeplink-attribution/pkg/rediskey"
	"deeplink-attribution/services/fingerprint"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrStoreUnavailable marks every failure of the underlying KV store.
// Callers decide whether to retry.
var ErrStoreUnavailable = errors.New("tracking store unavailable")

// minTTL keeps re-saves of nearly expired records from asking the store for
// a zero (never expire) or negative TTL.
const minTTL = time.Second

// IDDeriver turns a fingerprint into its storage key.
type IDDeriver interface {
	DeriveID(fp *fingerprint.DeviceFingerprint) string
}

// FuzzyGate switches the similarity fallback on and off at runtime.
type FuzzyGate interface {
	FuzzyEnabled(ctx context.Context) bool
}

// Service owns the save/lookup/consume lifecycle of tracking records. It
// holds no mutable state of its own: the lookup, mutate and re-save steps of
// a match are separate store calls, so concurrent matches on one record can
// both succeed. MaxMatches bounds that race; it is not a lock.
type Service struct {
	kv      KV
	ids     IDDeriver
	scorer  fingerprint.Scorer
	gate    FuzzyGate
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

type ServiceParams struct {
	fx.In
	KV             KV
	Fingerprints   *fingerprint.Service
	Scorer         fingerprint.Scorer   `optional:"true"`
	Gate           FuzzyGate            `optional:"true"`
	Metrics        *Metrics             `optional:"true"`
	TracerProvider trace.TracerProvider `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	s := &Service{
		kv:      p.KV,
		ids:     p.Fingerprints,
		scorer:  p.Scorer,
		gate:    p.Gate,
		metrics: p.Metrics,
		now:     time.Now,
	}
	if s.scorer == nil {
		s.scorer = p.Fingerprints
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	tp := p.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	s.tracer = tp.Tracer("deeplink-attribution/services/tracking")

	return s
}

func spanLogger(span trace.Span) *zap.Logger {
	return zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)
}

func (s *Service) storeErr(op string, err error) error {
	s.metrics.storeErrors.WithLabelValues(op).Inc()
	return errutil.ServiceUnavailable("tracking store unavailable", fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err))
}

// Save persists rec and indexes it for fuzzy lookup, returning the
// server-derived fingerprint ID. Any client-supplied ID is overwritten.
func (s *Service) Save(ctx context.Context, rec *TrackingRecord) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tracking.Save")
	defer span.End()

	if rec == nil {
		return "", errutil.ValidationFailed("tracking record is required", nil)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = rec.CreatedAt.Add(RecordTTL)
	}
	rec.FingerprintID = s.ids.DeriveID(rec.Fingerprint)
	span.SetAttributes(attribute.String("fingerprint_id", rec.FingerprintID))

	ttl, err := s.put(ctx, rec)
	if err != nil {
		return "", err
	}

	// A failure past this point leaves the record reachable by exact ID only.
	indexKey := rediskey.BuildTrackingIndexKey(IndexKey(rec.Fingerprint))
	if err := s.kv.SetAdd(ctx, indexKey, rec.FingerprintID); err != nil {
		return "", s.storeErr("sadd", err)
	}
	if err := s.kv.Expire(ctx, indexKey, ttl); err != nil {
		return "", s.storeErr("expire", err)
	}

	s.metrics.saves.Inc()
	spanLogger(span).Info("tracking record saved",
		zap.String("fingerprint_id", rec.FingerprintID),
		zap.String("index_key", indexKey),
		zap.Any("params", rec.Params),
		zap.Int("match_count", rec.MatchCount),
	)

	return rec.FingerprintID, nil
}

// put writes rec under its primary key for the rest of its lifetime and
// returns the TTL it used.
func (s *Service) put(ctx context.Context, rec *TrackingRecord) (time.Duration, error) {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, errutil.Internal("encode tracking record", err)
	}

	if err := s.kv.Set(ctx, rediskey.BuildTrackingKey(rec.FingerprintID), payload, ttl); err != nil {
		return 0, s.storeErr("set", err)
	}
	return ttl, nil
}

// Lookup fetches a record by ID. Records past ExpiresAt, and values that do
// not decode as a TrackingRecord, are reported as absent.
func (s *Service) Lookup(ctx context.Context, fingerprintID string) (*TrackingRecord, bool, error) {
	raw, ok, err := s.kv.Get(ctx, rediskey.BuildTrackingKey(fingerprintID))
	if err != nil {
		return nil, false, s.storeErr("get", err)
	}
	if !ok {
		return nil, false, nil
	}

	var rec TrackingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.metrics.undecodable.Inc()
		zap.L().Warn("skipping undecodable tracking record",
			zap.String("fingerprint_id", fingerprintID),
			zap.Error(err),
		)
		return nil, false, nil
	}

	if !rec.ExpiresAt.After(s.now()) {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Match recovers the record saved for the device behind fp and consumes it.
// The exact derived ID is tried first; when that record is missing or spent,
// the fingerprint's index bucket is scored candidate by candidate. A false
// result with a nil error means no record qualified.
func (s *Service) Match(ctx context.Context, fp *fingerprint.DeviceFingerprint) (MatchResult, bool, error) {
	ctx, span := s.tracer.Start(ctx, "tracking.Match")
	defer span.End()
	zapLog := spanLogger(span)

	id := s.ids.DeriveID(fp)
	rec, ok, err := s.Lookup(ctx, id)
	if err != nil {
		return MatchResult{}, false, err
	}

	if ok && rec.Eligible() {
		if err := s.consume(ctx, rec); err != nil {
			return MatchResult{}, false, err
		}
		s.metrics.matches.WithLabelValues(string(MatchExact)).Inc()
		zapLog.Info("exact match",
			zap.String("fingerprint_id", id),
			zap.Any("params", rec.Params),
			zap.Int("match_count", rec.MatchCount),
		)
		return MatchResult{Record: rec, Method: MatchExact, Score: 1}, true, nil
	}

	if s.gate != nil && !s.gate.FuzzyEnabled(ctx) {
		s.metrics.matches.WithLabelValues("none").Inc()
		zapLog.Info("no exact match, fuzzy matching disabled", zap.String("fingerprint_id", id))
		return MatchResult{}, false, nil
	}

	res, ok, err := s.fuzzyMatch(ctx, fp, zapLog)
	if err != nil {
		return MatchResult{}, false, err
	}
	if !ok {
		s.metrics.matches.WithLabelValues("none").Inc()
		return MatchResult{}, false, nil
	}

	s.metrics.matches.WithLabelValues(string(MatchFuzzy)).Inc()
	return res, true, nil
}

func (s *Service) fuzzyMatch(ctx context.Context, fp *fingerprint.DeviceFingerprint, zapLog *zap.Logger) (MatchResult, bool, error) {
	indexKey := rediskey.BuildTrackingIndexKey(IndexKey(fp))
	candidates, err := s.kv.SetMembers(ctx, indexKey)
	if err != nil {
		return MatchResult{}, false, s.storeErr("smembers", err)
	}
	if len(candidates) == 0 {
		zapLog.Info("no fuzzy candidates", zap.String("index_key", indexKey))
		return MatchResult{}, false, nil
	}

	// Set order is arbitrary; sorting makes ties resolve the same way every time.
	slices.Sort(candidates)

	var (
		best      *TrackingRecord
		bestScore float64
		seen      float64
		scored    bool
	)
	for _, id := range candidates {
		cand, ok, err := s.Lookup(ctx, id)
		if err != nil {
			return MatchResult{}, false, err
		}
		if !ok || !cand.Eligible() {
			continue
		}

		score := s.scorer.Similarity(fp, cand.Fingerprint)
		seen, scored = max(seen, score), true
		if score > bestScore && score >= SimilarityThreshold {
			best, bestScore = cand, score
		}
	}
	if scored {
		s.metrics.fuzzyScores.Observe(seen)
	}

	if best == nil {
		zapLog.Info("no fuzzy candidate above threshold",
			zap.String("index_key", indexKey),
			zap.Int("candidates", len(candidates)),
			zap.Float64("best_score", seen),
		)
		return MatchResult{}, false, nil
	}

	if err := s.consume(ctx, best); err != nil {
		return MatchResult{}, false, err
	}

	zapLog.Info("fuzzy match",
		zap.String("fingerprint_id", best.FingerprintID),
		zap.Float64("score", bestScore),
		zap.Any("params", best.Params),
	)
	return MatchResult{Record: best, Method: MatchFuzzy, Score: bestScore}, true, nil
}

// consume marks rec used and rewrites its primary key only. The index set is
// left alone: a spent record is never a candidate, and its shorter remaining
// TTL must not cut the bucket short for newer records.
func (s *Service) consume(ctx context.Context, rec *TrackingRecord) error {
	rec.Matched = true
	rec.MatchCount++
	_, err := s.put(ctx, rec)
	return err
}

// Housekeeping is the periodic maintenance hook. Expiry belongs to the
// store's own TTLs, so there is nothing to sweep.
func (s *Service) Housekeeping(ctx context.Context) error {
	zap.L().Debug("tracking housekeeping run")
	return nil
}
