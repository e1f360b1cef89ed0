package events

import "time"

// RequestStart is emitted before each HTTP attempt against the GraphQL endpoint.
type RequestStart struct {
	URL     string
	Attempt int
	Probe   bool
}

// RequestFinish is emitted after each HTTP attempt. Status is zero when no
// response was received.
type RequestFinish struct {
	URL      string
	Attempt  int
	Probe    bool
	Status   int
	Timeout  bool
	Err      error
	Duration time.Duration
}

// RateLimit is emitted for every cost probe answer.
type RateLimit struct {
	Cost      int
	Remaining int
	ResetAt   time.Time
}

// ThrottleStart is emitted before the client sleeps for the quota to reset.
type ThrottleStart struct {
	Cost      int
	Remaining int
	ResetAt   time.Time
	Wait      time.Duration
}

// ThrottleFinish is emitted when the throttle sleep ends.
type ThrottleFinish struct {
	Slept time.Duration
	Err   error
}

// ExecuteStart is emitted when a document execution begins.
type ExecuteStart struct {
	Query string
}

// ExecuteFinish is emitted when a document execution ends.
type ExecuteFinish struct {
	Query    string
	Err      error
	Duration time.Duration
}

// PageFetched is emitted after a page of a paginated document is applied
// to its cursor.
type PageFetched struct {
	Page      int
	HasNext   bool
	EndCursor string
}
