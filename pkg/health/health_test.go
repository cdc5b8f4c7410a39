package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChecker_StartsUnready(t *testing.T) {
	c := NewChecker("v1.2.3")

	assert.Equal(t, ModeStarting, c.Mode())
	assert.False(t, c.IsReady(), "checker should not be ready until SetReady(true) is called")
}

func TestChecker_SetMode(t *testing.T) {
	c := NewChecker("v1.2.3")
	c.SetMode(ModeServing)
	assert.Equal(t, ModeServing, c.Mode())
}

func TestChecker_SetReady(t *testing.T) {
	c := NewChecker("v1.2.3")
	assert.False(t, c.IsReady())

	c.SetReady(true)
	assert.True(t, c.IsReady())

	c.SetReady(false)
	assert.False(t, c.IsReady())
}

func TestChecker_LivenessCheck(t *testing.T) {
	c := NewChecker("v1.2.3")

	resp := c.LivenessCheck()
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
	assert.NotZero(t, resp.Timestamp)
}

func TestChecker_ReadinessCheck_Ready(t *testing.T) {
	c := NewChecker("v1.2.3")
	c.SetMode(ModeServing)
	c.SetReady(true)

	resp := c.ReadinessCheck()
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "serving", resp.Mode)
}

func TestChecker_ReadinessCheck_NotReady(t *testing.T) {
	c := NewChecker("v1.2.3")

	resp := c.ReadinessCheck()
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "starting", resp.Mode)
}

func TestChecker_HealthCheck_Healthy(t *testing.T) {
	c := NewChecker("v1.2.3")
	c.SetMode(ModeServing)
	c.SetReady(true)

	resp := c.HealthCheck()
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "serving", resp.Mode)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "liveness", resp.Checks[0].Name)
	assert.Equal(t, StatusOK, resp.Checks[0].Status)
	assert.Equal(t, "readiness", resp.Checks[1].Name)
	assert.Equal(t, StatusOK, resp.Checks[1].Status)
}

func TestChecker_HealthCheck_NotHealthy(t *testing.T) {
	c := NewChecker("v1.2.3")

	resp := c.HealthCheck()
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "starting", resp.Mode)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "liveness", resp.Checks[0].Name)
	assert.Equal(t, StatusOK, resp.Checks[0].Status)
	assert.Equal(t, "readiness", resp.Checks[1].Name)
	assert.Equal(t, StatusFailed, resp.Checks[1].Status)
}
