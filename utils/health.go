package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// healthProbeInterval is how often the backing stores are pinged.
const healthProbeInterval = 60 * time.Second

// HealthStatus is the latest probe result for the stores this service
// depends on: the order/booking database, the flow-session cache, and
// the auth token cache.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Cache     bool      `json:"cache"`
	AuthCache bool      `json:"authCache"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every backing store answered its last probe.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.Cache && h.AuthCache
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func probeHealth(mongoClient *mongo.Client, cacheClient, authClient *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot := HealthStatus{
		Mongo:     mongoClient.Ping(ctx, nil) == nil,
		Cache:     cacheClient.Ping(ctx).Err() == nil,
		AuthCache: authClient.Ping(ctx).Err() == nil,
		CheckedAt: time.Now(),
	}

	healthMu.Lock()
	currentHealth = snapshot
	healthMu.Unlock()
}

// StartHealthMonitor probes the backing stores once immediately, then
// keeps the snapshot fresh on a fixed interval.
func StartHealthMonitor(mongoClient *mongo.Client, cacheClient, authClient *redis.Client) {
	probeHealth(mongoClient, cacheClient, authClient)

	go func() {
		ticker := time.NewTicker(healthProbeInterval)
		defer ticker.Stop()

		for range ticker.C {
			probeHealth(mongoClient, cacheClient, authClient)
		}
	}()
}
