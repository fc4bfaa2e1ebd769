package api

import (
	"context"
	"fmt"

	"boardeasy/internal/models"
)

// Admin operations. All of these require an admin session; the backend
// enforces the role, the bot's guards merely avoid pointless calls.

func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.User](ctx, c, "admin_users", "/api/admin/users")
}

func (c *Client) AdminDrivers(ctx context.Context) ([]models.User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.User](ctx, c, "admin_drivers", "/api/admin/users/drivers")
}

// SetUserActive activates or deactivates an account.
func (c *Client) SetUserActive(ctx context.Context, userID int64, active bool) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	return c.put(ctx, "admin_user_"+action, fmt.Sprintf("/api/admin/users/%d/%s", userID, action), nil, nil)
}

// AssignDriver assigns a driver to a vehicle.
func (c *Client) AssignDriver(ctx context.Context, vehicleID, driverID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.put(ctx, "admin_assign_driver",
		fmt.Sprintf("/api/admin/vehicles/%d/assign-driver/%d", vehicleID, driverID), nil, nil)
}
