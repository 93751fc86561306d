package tracking

import (
	"context"
	"testing"
	"time"

	"deeplink-attribution/pkg/rediskey"
	"deeplink-attribution/services/fingerprint"
	"deeplink-attribution/services/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRedisKV(t *testing.T) {
	rdb, mr := testutil.NewTestRedis(t)
	kv := NewRedisKV(rdb)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "tracking:missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, "tracking:a", []byte(`{"x":1}`), time.Hour))
	got, ok, err := kv.Get(ctx, "tracking:a")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"x":1}`, string(got))
	require.Equal(t, time.Hour, mr.TTL("tracking:a"))

	require.NoError(t, kv.SetAdd(ctx, "tracking:index:k", "a"))
	require.NoError(t, kv.SetAdd(ctx, "tracking:index:k", "b"))
	require.NoError(t, kv.SetAdd(ctx, "tracking:index:k", "a"))
	members, err := kv.SetMembers(ctx, "tracking:index:k")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, kv.Expire(ctx, "tracking:index:k", 30*time.Minute))
	require.Equal(t, 30*time.Minute, mr.TTL("tracking:index:k"))

	mr.FastForward(time.Hour)
	_, ok, err = kv.Get(ctx, "tracking:a")
	require.NoError(t, err)
	require.False(t, ok)

	members, err = kv.SetMembers(ctx, "tracking:index:k")
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestRedisKVUnavailable(t *testing.T) {
	rdb, mr := testutil.NewTestRedis(t)
	kv := NewRedisKV(rdb)
	mr.Close()

	_, _, err := kv.Get(context.Background(), "tracking:a")
	require.Error(t, err)
}

func TestServiceOverRedis(t *testing.T) {
	rdb, mr := testutil.NewTestRedis(t)
	fps, err := fingerprint.NewService()
	require.NoError(t, err)

	svc := NewService(ServiceParams{
		KV:           NewRedisKV(rdb),
		Fingerprints: fps,
		Metrics:      NewMetrics(prometheus.NewRegistry()),
	})
	ctx := context.Background()

	id, err := svc.Save(ctx, &TrackingRecord{Fingerprint: webFingerprint(), Params: map[string]string{"invite": "abc123"}})
	require.NoError(t, err)

	require.True(t, mr.Exists(rediskey.BuildTrackingKey(id)))
	ttl := mr.TTL(rediskey.BuildTrackingKey(id))
	require.InDelta(t, RecordTTL.Seconds(), ttl.Seconds(), 5)

	indexMembers, err := mr.SMembers(rediskey.BuildTrackingIndexKey(IndexKey(webFingerprint())))
	require.NoError(t, err)
	require.Equal(t, []string{id}, indexMembers)

	app := webFingerprint()
	app.UserAgent = "Android/13 Pixel"
	res, ok, err := svc.Match(ctx, app)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, MatchFuzzy, res.Method)
	require.Equal(t, "abc123", res.Record.Params["invite"])

	_, ok, err = svc.Match(ctx, webFingerprint())
	require.NoError(t, err)
	require.False(t, ok)

	mr.Close()
	_, _, err = svc.Match(ctx, webFingerprint())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}
