package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// Trip lifecycle events fan out per participant through the registry
// rather than a room, so offline participants are skipped naturally.

// handleTripStarted marks the trip active and notifies every participant
func (h *Handler) handleTripStarted(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripStartedPayload
	if err := decode(data, &payload); err != nil {
		return err
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	if err := h.trips.UpdateTripStatus(ctx, trip.ID, models.TripStatusActive); err != nil {
		return fmt.Errorf("failed to mark trip active: %w", err)
	}

	h.deliverToParticipants(trip, constants.EventTripStatusUpdate, tripStatusEvent{
		TripID:      trip.ID,
		Status:      models.TripStatusActive,
		SessionID:   payload.SessionID,
		TriggeredBy: client.User.ID,
	})

	return nil
}

// handleTripCompleted persists the final stats, marks the trip completed
// and notifies every participant
func (h *Handler) handleTripCompleted(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripCompletedPayload
	if err := decode(data, &payload); err != nil {
		return err
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	if err := h.trips.UpdateTripStats(ctx, trip.ID, payload.Stats); err != nil {
		return fmt.Errorf("failed to persist trip stats: %w", err)
	}
	if err := h.trips.UpdateTripStatus(ctx, trip.ID, models.TripStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark trip completed: %w", err)
	}

	stats := payload.Stats
	h.deliverToParticipants(trip, constants.EventTripStatusUpdate, tripStatusEvent{
		TripID:      trip.ID,
		Status:      models.TripStatusCompleted,
		Stats:       &stats,
		TriggeredBy: client.User.ID,
	})

	return nil
}

// handleTripUpdate delivers an arbitrary update payload to every
// participant without mutating trip state
func (h *Handler) handleTripUpdate(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripUpdatePayload
	if err := decode(data, &payload); err != nil {
		return err
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	h.deliverToParticipants(trip, constants.EventTripUpdate, tripUpdateEvent{
		TripID:     trip.ID,
		UpdateType: payload.UpdateType,
		UpdateData: payload.UpdateData,
	})

	return nil
}

// deliverToParticipants pushes an event to each participant's registered
// connection; offline participants are dropped silently
func (h *Handler) deliverToParticipants(trip *models.Trip, event string, data interface{}) {
	for _, participantID := range trip.ParticipantIDs() {
		h.broadcaster.DeliverToUser(participantID.String(), event, data)
	}
}
