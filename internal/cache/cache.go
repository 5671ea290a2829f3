package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is the process local store used for read mostly lookups such as level policies.
// A zero expiration on Set means the configured TTL.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

// Key prefixes carry a version so a changed value layout never reads stale entries
const (
	PrefixSeatPolicy     = "seat_policy:v1:"
	PrefixSeatPolicyList = "seat_policy_list:v1"
)

// SeatPolicyKey is the key of one level's policy
func SeatPolicyKey(levelID int64) string {
	return PrefixSeatPolicy + strconv.FormatInt(levelID, 10)
}
