package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// Location sharing is an ephemeral, lower-latency channel alongside the
// durable HTTP point-ingestion path. Nothing here mutates a tracking
// session.

// handleStartLocationSharing authorizes membership, joins the location
// room and pushes the first position to the other members
func (h *Handler) handleStartLocationSharing(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload locationSharePayload
	if err := decode(data, &payload); err != nil {
		return err
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	room := constants.RoomTripLocation(trip.ID.String())
	h.broadcaster.Join(client, room)

	if err := client.Send(constants.EventLocationSharingStarted, tripRoomPayload{TripID: trip.ID.String()}); err != nil {
		return fmt.Errorf("failed to confirm location sharing: %w", err)
	}

	h.broadcaster.BroadcastToRoom(room, constants.EventUserLocationUpdate, locationUpdateEvent{
		TripID:    trip.ID,
		UserID:    client.User.ID,
		Name:      client.User.Name,
		Lat:       payload.Lat,
		Lng:       payload.Lng,
		Accuracy:  payload.Accuracy,
		Timestamp: h.now(),
	}, client)

	return nil
}

// handleUpdateLocation broadcasts a position to the room, excluding the
// sender. Assumes the client already joined via start_location_sharing.
func (h *Handler) handleUpdateLocation(_ context.Context, client *ws.Client, data json.RawMessage) error {
	var payload locationSharePayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	tripID, err := parseTripID(payload.TripID)
	if err != nil {
		return err
	}

	h.broadcaster.BroadcastToRoom(
		constants.RoomTripLocation(tripID.String()),
		constants.EventUserLocationUpdate,
		locationUpdateEvent{
			TripID:    tripID,
			UserID:    client.User.ID,
			Name:      client.User.Name,
			Lat:       payload.Lat,
			Lng:       payload.Lng,
			Accuracy:  payload.Accuracy,
			Speed:     payload.Speed,
			Heading:   payload.Heading,
			Timestamp: h.now(),
		},
		client,
	)

	return nil
}

// handleStopLocationSharing leaves the room and tells the remaining
// members
func (h *Handler) handleStopLocationSharing(_ context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripRoomPayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	tripID, err := parseTripID(payload.TripID)
	if err != nil {
		return err
	}

	room := constants.RoomTripLocation(tripID.String())
	h.broadcaster.Leave(client, room)

	if err := client.Send(constants.EventLocationSharingStopped, tripRoomPayload{TripID: tripID.String()}); err != nil {
		return fmt.Errorf("failed to confirm sharing stop: %w", err)
	}
	h.broadcaster.BroadcastToRoom(room, constants.EventUserStoppedSharing, roomMembershipEvent{
		TripID: tripID,
		User:   client.User,
	}, client)

	return nil
}
