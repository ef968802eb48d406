package audit

import "time"

// TimelineFilters narrows the audit timeline. Zero values disable a filter.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  int64
	Action   string
	EntityID string
	Page     int
	PageSize int
}

// TimelineRow is one audit entry joined with the acting user's email.
type TimelineRow struct {
	At         time.Time      `json:"at"`
	ActorID    int64          `json:"actor_id"`
	ActorEmail string         `json:"actor_email,omitempty"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// PagingInfo describes the page returned by Timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result wraps a page of timeline rows.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
