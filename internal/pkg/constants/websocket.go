package constants

// Inbound WebSocket event types (client -> server)
const (
	// Chat events
	EventJoinTripChat  = "join_trip_chat"
	EventLeaveTripChat = "leave_trip_chat"
	EventSendMessage   = "send_message"
	EventTypingStart   = "typing_start"
	EventTypingStop    = "typing_stop"

	// Location sharing events
	EventStartLocationSharing = "start_location_sharing"
	EventUpdateLocation       = "update_location"
	EventStopLocationSharing  = "stop_location_sharing"

	// Trip lifecycle events
	EventTripStarted   = "trip_started"
	EventTripCompleted = "trip_completed"
	EventTripUpdate    = "trip_update"

	// Notification events
	EventSendNotification     = "send_notification"
	EventMarkNotificationRead = "mark_notification_read"
)

// Outbound WebSocket event types (server -> client)
const (
	EventConnected = "connected"
	EventError     = "error"

	EventJoinedTripChat = "joined_trip_chat"
	EventLeftTripChat   = "left_trip_chat"
	EventUserJoinedChat = "user_joined_chat"
	EventUserLeftChat   = "user_left_chat"
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"

	EventLocationSharingStarted = "location_sharing_started"
	EventLocationSharingStopped = "location_sharing_stopped"
	EventUserLocationUpdate     = "user_location_update"
	EventUserStoppedSharing     = "user_stopped_sharing"

	EventTripStatusUpdate = "trip_status_update"

	EventNotification           = "notification"
	EventNotificationSent       = "notification_sent"
	EventNotificationMarkedRead = "notification_marked_read"
)

// WebSocket error codes
const (
	ErrorInvalidFormat    = "invalid_format"
	ErrorValidationFailed = "validation_failed"
	ErrorUnauthorized     = "unauthorized"
	ErrorNotFound         = "not_found"
	ErrorInternalError    = "internal_error"
)

// Room key prefixes. A room key is purpose + entity id; membership is
// per-connection and process-local.
const (
	roomTripChatPrefix     = "trip-chat:"
	roomTripLocationPrefix = "trip-location:"
)

// RoomTripChat derives the chat room key for a trip
func RoomTripChat(tripID string) string {
	return roomTripChatPrefix + tripID
}

// RoomTripLocation derives the location-sharing room key for a trip
func RoomTripLocation(tripID string) string {
	return roomTripLocationPrefix + tripID
}
