package rediskey

import "fmt"

// Tracking keys (global convention across services)
const (
	TrackingPrefix      = "tracking"
	TrackingIndexPrefix = "tracking:index"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildTrackingKey returns "tracking:{fingerprintID}"
func BuildTrackingKey(fingerprintID string) string {
	return NamespaceKey(TrackingPrefix, fingerprintID)
}

// BuildTrackingIndexKey returns "tracking:index:{indexKey}"
func BuildTrackingIndexKey(indexKey string) string {
	return NamespaceKey(TrackingIndexPrefix, indexKey)
}
