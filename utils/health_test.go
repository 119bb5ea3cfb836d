package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatusHealthy(t *testing.T) {
	assert.True(t, HealthStatus{Mongo: true, Cache: true, AuthCache: true}.Healthy())
	assert.False(t, HealthStatus{Mongo: true, Cache: true}.Healthy())
	assert.False(t, HealthStatus{Cache: true, AuthCache: true}.Healthy())
	assert.False(t, HealthStatus{}.Healthy())
}
