package api

import (
	"context"
	"fmt"

	"boardeasy/internal/models"
)

// Catalog endpoints. Route and operator lists are public; creation requires
// an admin session.

func (c *Client) GetRoutes(ctx context.Context, size int) ([]models.Route, error) {
	return getCachedCollection[models.Route](ctx, c, "routes_list", "/api/routes"+sizeQuery(size), "catalog:routes")
}

func (c *Client) CreateRoute(ctx context.Context, route models.Route) (*models.Route, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.Route
	if err := c.post(ctx, "route_create", "/api/routes", route, &out); err != nil {
		return nil, err
	}
	c.invalidateCache(ctx, "catalog:routes")
	return &out, nil
}

func (c *Client) GetVehicles(ctx context.Context, size int) ([]models.Vehicle, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Vehicle](ctx, c, "vehicles_list", "/api/vehicles"+sizeQuery(size))
}

func (c *Client) GetDriverVehicles(ctx context.Context, driverID int64) ([]models.Vehicle, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Vehicle](ctx, c, "vehicles_driver", fmt.Sprintf("/api/vehicles/driver/%d", driverID))
}

func (c *Client) GetSchedules(ctx context.Context, size int) ([]models.Schedule, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Schedule](ctx, c, "schedules_list", "/api/schedules"+sizeQuery(size))
}

func (c *Client) CreateSchedule(ctx context.Context, schedule models.Schedule) (*models.Schedule, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.Schedule
	if err := c.post(ctx, "schedule_create", "/api/schedules", schedule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchBuses runs the public trip search.
func (c *Client) SearchBuses(ctx context.Context, req models.SearchRequest) ([]models.BusResult, error) {
	return postCollection[models.BusResult](ctx, c, "bus_search", "/api/bus-search/search", req)
}

// GetOperators returns the operator facet list for search filters.
func (c *Client) GetOperators(ctx context.Context) ([]string, error) {
	return getCachedCollection[string](ctx, c, "operators_list", "/api/bus-search/operators", "catalog:operators")
}

func (c *Client) invalidateCache(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, keys...).Err()
}
