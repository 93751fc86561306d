package taskname

const (
	// Tracking tasks
	TrackingHousekeeping = "tracking:housekeeping"
)
