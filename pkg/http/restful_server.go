package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"slopewatch.dev/slope-telemetry-service/pkg/core"
)

type RestfulServer struct {
	Server           *gin.Engine
	Core             *core.Core
	RateLimiterStore *core.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/", rs.Liveness)
	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.POST("/sensors", rs.PostSensors)
	rs.Server.POST("/alert", rs.PostAlert)

	devices := rs.Server.Group("/devices/:device_id")
	{
		devices.GET("/readings", rs.GetReadings)
		devices.POST("/subscribers", rs.PostSubscriber)
		devices.POST("/limiter", rs.PostLimiter)
	}
}
