package constants

// NSQ topics published by the tracking gateway
const (
	TopicSessionStarted   = "tracking.session.started"
	TopicSessionCompleted = "tracking.session.completed"
	TopicTripCompleted    = "trip.completed"
)
