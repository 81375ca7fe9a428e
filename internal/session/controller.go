// Package session holds the authenticated monitor identity and gates
// everything behind it: no submission, refresh or check-in runs
// without a successful login. The session lives for the process
// lifetime; there is no logout.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned when an action requires a session
// that has not been established
var ErrNotAuthenticated = errors.New("not logged in")

// Authenticator is the backend surface the controller needs
type Authenticator interface {
	Login(ctx context.Context, monitorID, password string) (string, error)
	CheckIn(ctx context.Context, monitorID string) (string, error)
}

// Refresher is invoked once after a successful login to populate the
// submission history.
type Refresher interface {
	Refresh(ctx context.Context, monitorID string)
}

// Controller owns the session state
type Controller struct {
	api       Authenticator
	refresher Refresher
	logger    *zap.Logger

	monitorID     string
	authenticated bool
}

// NewController creates a session controller
func NewController(api Authenticator, refresher Refresher, logger *zap.Logger) *Controller {
	return &Controller{
		api:       api,
		refresher: refresher,
		logger:    logger,
	}
}

// Login authenticates the monitor. On success the identity is stored
// and the initial history refresh runs; on failure the session stays
// unauthenticated and the backend's message travels up unchanged.
func (c *Controller) Login(ctx context.Context, monitorID, password string) (string, error) {
	if _, err := c.api.Login(ctx, monitorID, password); err != nil {
		c.logger.Warn("Login failed", zap.String("monitor_id", monitorID), zap.Error(err))
		return "", err
	}

	c.monitorID = monitorID
	c.authenticated = true
	c.logger.Info("Monitor logged in", zap.String("monitor_id", monitorID))

	c.refresher.Refresh(ctx, monitorID)

	return fmt.Sprintf("Login successful! Welcome, %s.", monitorID), nil
}

// CheckIn reports the monitor's presence. It requires an established
// session and never alters session state.
func (c *Controller) CheckIn(ctx context.Context) (string, error) {
	if !c.authenticated {
		return "", ErrNotAuthenticated
	}
	return c.api.CheckIn(ctx, c.monitorID)
}

// MonitorID returns the authenticated identity, or the empty string
func (c *Controller) MonitorID() string {
	return c.monitorID
}

// Authenticated reports whether a session has been established
func (c *Controller) Authenticated() bool {
	return c.authenticated
}
