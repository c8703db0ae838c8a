package stages

import "errors"

var (
	// ErrSlugStageRequired is returned when no slug projection stage is supplied.
	ErrSlugStageRequired = errors.New("slug stage required")

	// ErrGroupStageRequired is returned when no merge/dedup stage is supplied.
	ErrGroupStageRequired = errors.New("group stage required")
)
