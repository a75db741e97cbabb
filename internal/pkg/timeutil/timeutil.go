package timeutil

import "time"

// NowMillis is the clock used for store-assigned note timestamps.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
