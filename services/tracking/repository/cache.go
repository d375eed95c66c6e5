package repository

import (
	"context"
	"fmt"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/database"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking"
)

type locationCache struct {
	redisClient *database.RedisClient
}

// NewLocationCache creates the Redis-backed live location cache
func NewLocationCache(redisClient *database.RedisClient) tracking.LocationCache {
	return &locationCache{redisClient: redisClient}
}

// UpdateRiderLocation upserts the rider's position in the geo set
func (c *locationCache) UpdateRiderLocation(ctx context.Context, riderID string, lat, lng float64) error {
	if err := c.redisClient.GeoAdd(ctx, constants.KeyRiderGeo, lng, lat, riderID); err != nil {
		return fmt.Errorf("failed to update rider location: %w", err)
	}
	return nil
}

// RemoveRiderLocation drops the rider from the geo set when their
// session ends
func (c *locationCache) RemoveRiderLocation(ctx context.Context, riderID string) error {
	if err := c.redisClient.GeoRemove(ctx, constants.KeyRiderGeo, riderID); err != nil {
		return fmt.Errorf("failed to remove rider location: %w", err)
	}
	return nil
}

// NearbyRiders returns live riders within radiusKm of the point, nearest
// first
func (c *locationCache) NearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyRider, error) {
	locations, err := c.redisClient.GeoRadius(ctx, constants.KeyRiderGeo, lng, lat, radiusKm, "km")
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby riders: %w", err)
	}

	riders := make([]models.NearbyRider, 0, len(locations))
	for _, loc := range locations {
		riders = append(riders, models.NearbyRider{
			RiderID:    loc.Name,
			Lat:        loc.Latitude,
			Lng:        loc.Longitude,
			DistanceKm: loc.Dist,
		})
	}

	return riders, nil
}
