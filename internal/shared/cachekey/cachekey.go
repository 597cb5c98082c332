// Package cachekey holds Redis key names shared by producers and readers of
// cached data.
package cachekey

import "fmt"

// DashboardSnapshot is a hash holding one dashboard snapshot per
// (version, day, window) field. Deleting the key drops every cached snapshot.
const DashboardSnapshot = "hrms:dashboard:snapshot"

// DashboardVersion is incremented by every write that changes dashboard
// numbers. Snapshots are filed under the version they were computed at.
const DashboardVersion = "hrms:dashboard:version"

// DashboardField is the hash field of the snapshot for a data version, day
// and window size.
func DashboardField(version int64, day string, days int) string {
	return fmt.Sprintf("v%d:%s:%d", version, day, days)
}

// Idempotency is the key caching the response of a POST replayed with the
// same Idempotency-Key header.
func Idempotency(path, key string) string {
	return fmt.Sprintf("hrms:idemp:%s:%s", path, key)
}
