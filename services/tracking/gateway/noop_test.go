package gateway_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking/gateway"
)

func TestNoopGateway_DropsEventsWithoutError(t *testing.T) {
	gw := gateway.NewNoopTrackingGW()
	ctx := context.Background()
	session := &models.TrackingSession{SessionID: "TRK_1000_abcdef123"}

	assert.NoError(t, gw.PublishSessionStarted(ctx, session))
	assert.NoError(t, gw.PublishSessionCompleted(ctx, session))
	assert.NoError(t, gw.PublishTripCompleted(ctx, uuid.New()))
}
