package queries

import (
	"fmt"

	"github.com/hanpama/gitminer/internal/cost"
	"github.com/hanpama/gitminer/internal/query"
)

// RateLimit asks for the full rate-limit status. With dryrun set the query
// itself is not charged.
func RateLimit(dryrun bool) *query.Document {
	return query.New(query.Node("rateLimit", query.Args("dryrun", dryrun)).
		Select("cost", "limit", "remaining", "resetAt", "used"))
}

// RateLimitStatus is the result of RateLimit.
type RateLimitStatus struct {
	cost.Snapshot
	Limit int
	Used  int
}

func ExtractRateLimit(data map[string]any) (RateLimitStatus, error) {
	var v struct {
		RateLimit *struct {
			Cost      int    `json:"cost"`
			Limit     int    `json:"limit"`
			Remaining int    `json:"remaining"`
			ResetAt   string `json:"resetAt"`
			Used      int    `json:"used"`
		} `json:"rateLimit"`
	}
	if err := decode(data, &v); err != nil {
		return RateLimitStatus{}, err
	}
	rl := v.RateLimit
	if rl == nil {
		return RateLimitStatus{}, fmt.Errorf("queries: no rateLimit object")
	}
	reset, err := cost.ParseResetAt(rl.ResetAt)
	if err != nil {
		return RateLimitStatus{}, err
	}
	return RateLimitStatus{
		Snapshot: cost.Snapshot{Cost: rl.Cost, Remaining: rl.Remaining, ResetAt: reset},
		Limit:    rl.Limit,
		Used:     rl.Used,
	}, nil
}
