// Package redis wraps go-redis with huddle logging and component lifecycle.
//
// TypedStore stores JSON-encoded values under a key prefix and backs the
// insight cache:
//
//	store := redis.NewTypedStore[insight.Insight](client, "insight")
//	store.Save(ctx, meetingID, &ins, cfg.TTL())
//	got, err := store.Load(ctx, meetingID) // nil, nil on a miss
package redis
