package periods

import "time"

// Period is an administrative date range. When Locked, no journal entry
// dated inside [Start, End] may be posted.
type Period struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Locked    bool      `json:"locked"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
