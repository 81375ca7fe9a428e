package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tallysentry/internal/backend"
)

type fakeAuthenticator struct {
	loginFunc   func(ctx context.Context, monitorID, password string) (string, error)
	checkInFunc func(ctx context.Context, monitorID string) (string, error)
}

func (a *fakeAuthenticator) Login(ctx context.Context, monitorID, password string) (string, error) {
	if a.loginFunc != nil {
		return a.loginFunc(ctx, monitorID, password)
	}
	return "", nil
}

func (a *fakeAuthenticator) CheckIn(ctx context.Context, monitorID string) (string, error) {
	if a.checkInFunc != nil {
		return a.checkInFunc(ctx, monitorID)
	}
	return "Checked in.", nil
}

type fakeRefresher struct {
	calls []string
}

func (r *fakeRefresher) Refresh(ctx context.Context, monitorID string) {
	r.calls = append(r.calls, monitorID)
}

func TestController_Login(t *testing.T) {
	t.Run("success stores identity and refreshes history once", func(t *testing.T) {
		refresher := &fakeRefresher{}
		c := NewController(&fakeAuthenticator{}, refresher, zap.NewNop())

		msg, err := c.Login(context.Background(), "M1", "secret")
		require.NoError(t, err)
		assert.Equal(t, "Login successful! Welcome, M1.", msg)
		assert.True(t, c.Authenticated())
		assert.Equal(t, "M1", c.MonitorID())
		assert.Equal(t, []string{"M1"}, refresher.calls)
	})

	t.Run("failure leaves the session unauthenticated", func(t *testing.T) {
		refresher := &fakeRefresher{}
		api := &fakeAuthenticator{loginFunc: func(ctx context.Context, monitorID, password string) (string, error) {
			return "", &backend.APIError{Status: 401, Message: "Invalid monitor ID or password."}
		}}
		c := NewController(api, refresher, zap.NewNop())

		_, err := c.Login(context.Background(), "M1", "wrong")
		require.Error(t, err)
		assert.Equal(t, "Invalid monitor ID or password.", backend.UserMessage(err, "retry"))
		assert.False(t, c.Authenticated())
		assert.Empty(t, c.MonitorID())
		assert.Empty(t, refresher.calls)
	})
}

func TestController_CheckIn(t *testing.T) {
	t.Run("requires an established session", func(t *testing.T) {
		c := NewController(&fakeAuthenticator{}, &fakeRefresher{}, zap.NewNop())

		_, err := c.CheckIn(context.Background())
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("sends the stored identity and keeps session state", func(t *testing.T) {
		var got string
		api := &fakeAuthenticator{checkInFunc: func(ctx context.Context, monitorID string) (string, error) {
			got = monitorID
			return "Welcome to your station.", nil
		}}
		c := NewController(api, &fakeRefresher{}, zap.NewNop())
		_, err := c.Login(context.Background(), "M1", "secret")
		require.NoError(t, err)

		msg, err := c.CheckIn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "M1", got)
		assert.Equal(t, "Welcome to your station.", msg)
		assert.True(t, c.Authenticated())
	})

	t.Run("check-in failure does not alter session state", func(t *testing.T) {
		api := &fakeAuthenticator{checkInFunc: func(ctx context.Context, monitorID string) (string, error) {
			return "", backend.ErrNetwork
		}}
		c := NewController(api, &fakeRefresher{}, zap.NewNop())
		_, err := c.Login(context.Background(), "M1", "secret")
		require.NoError(t, err)

		_, err = c.CheckIn(context.Background())
		require.Error(t, err)
		assert.True(t, c.Authenticated())
		assert.Equal(t, "M1", c.MonitorID())
	})
}
