package http

import (
	"net/http"
	"time"

	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/core"
	"slopewatch.dev/slope-telemetry-service/pkg/models"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

// PostSensors ingests one telemetry reading. The body is parsed as a raw
// key-value map instead of a typed schema: the normalizer's contract is
// permissive (absent fields default, non-numeric values coerce to 0) and
// only the presence of a soil moisture field is validated.
func (rs *RestfulServer) PostSensors(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	deviceID := core.PlaceholderDeviceID
	if id, ok := raw["device_id"].(string); ok && id != "" {
		deviceID = id
	}
	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	result, err := rs.Core.Ingest(raw)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"alert_level":    int(result.Tier),
		"alert_message":  result.AlertMessage,
		"sms_sent_count": result.SmsSentCount,
	})
}

type AlertRequest struct {
	Uid      string `json:"uid"`
	Message  string `json:"message"`
	DeviceId string `json:"deviceId"`
}

var alertRequestSchema = z.Struct(z.Shape{
	"Uid":      z.String().Min(1).Required(),
	"Message":  z.String().Min(1).Required(),
	"DeviceId": z.String(),
})

func (rs *RestfulServer) PostAlert(c *gin.Context) {
	var req AlertRequest
	if err := alertRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sentTo, err := rs.Core.SendDirectAlert(req.Uid, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sentTo": sentTo})
}

type ReadingResponse struct {
	ID            uint      `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	SoilMoisture1 *float64  `json:"soil_moisture_1"`
	SoilMoisture2 *float64  `json:"soil_moisture_2"`
	SoilMoisture3 *float64  `json:"soil_moisture_3"`
	Tilt          float64   `json:"tilt"`
	Vibration     float64   `json:"vibration"`
	AlertLevel    int       `json:"alert_level"`
	AlertMessage  string    `json:"alert_message"`
}

func (rs *RestfulServer) GetReadings(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	readings, err := rs.Core.Reading.GetDeviceReadings(deviceID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.Mapper(readings, func(r models.Reading) ReadingResponse {
		return ReadingResponse{
			ID:            r.ID,
			Timestamp:     r.Timestamp,
			SoilMoisture1: r.SoilMoisture1,
			SoilMoisture2: r.SoilMoisture2,
			SoilMoisture3: r.SoilMoisture3,
			Tilt:          r.Tilt,
			Vibration:     r.Vibration,
			AlertLevel:    int(r.Tier),
			AlertMessage:  r.Message,
		}
	}))
}

type SubscriberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

var subscriberRequestSchema = z.Struct(z.Shape{
	"PhoneNumber": z.String().Min(1).Required(),
})

func (rs *RestfulServer) PostSubscriber(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req SubscriberRequest
	if err := subscriberRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if err := rs.Core.Directory.AddSubscriber(deviceID, req.PhoneNumber); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "slope telemetry service is alive")
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the error taxonomy to response codes: ValidationError 400,
// NotFoundError 404, DependencyError 500 with the underlying detail
// surfaced rather than hidden.
func writeError(c *gin.Context, err error) {
	if ve, ok := common.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}
	if nfe, ok := common.AsNotFoundError(err); ok {
		c.JSON(http.StatusNotFound, gin.H{"error": nfe.Error()})
		return
	}
	if de, ok := common.AsDependencyError(err); ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": de.Op, "details": de.Err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
