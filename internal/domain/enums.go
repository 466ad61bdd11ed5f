package domain

type CourseStatus string

const (
	StatusCompleted CourseStatus = "completed"
	StatusAvailable CourseStatus = "available"
	StatusLocked    CourseStatus = "locked"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "completed"
	FilterAvailable StatusFilter = "available"
	FilterLocked    StatusFilter = "locked"
)

// ValidStatusFilters is the canonical set of accepted filter strings.
var ValidStatusFilters = map[string]bool{
	"all": true, "completed": true, "available": true, "locked": true,
}

type ViewMode string

const (
	ViewGraph    ViewMode = "graph"
	ViewTimeline ViewMode = "timeline"
	ViewList     ViewMode = "list"
)

type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)
