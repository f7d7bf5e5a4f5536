package core

import (
	"strconv"

	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

// PlaceholderDeviceID is used when a reading arrives without a device_id.
const PlaceholderDeviceID = "unknown_device"

const (
	keyDeviceID      = "device_id"
	keySoilMoisture1 = "soil_moisture_1"
	keySoilMoisture2 = "soil_moisture_2"
	keySoilMoisture3 = "soil_moisture_3"
	keyTilt          = "tilt"
	keyVibration     = "vibration"
)

// NormalizeReading coerces a raw request body into a SensorReading. Field
// coercion is deliberately permissive: a present but non-numeric value
// becomes 0, never an error. The only rejection is when all three soil
// moisture keys are absent; presence is checked, not value, so an explicit
// 0 counts as present. No side effects.
func NormalizeReading(raw map[string]any) (*models.SensorReading, error) {
	_, has1 := raw[keySoilMoisture1]
	_, has2 := raw[keySoilMoisture2]
	_, has3 := raw[keySoilMoisture3]
	if !has1 && !has2 && !has3 {
		return nil, common.NewValidationError("missing soil moisture")
	}

	reading := &models.SensorReading{
		DeviceID:  PlaceholderDeviceID,
		Tilt:      coerceFloat(raw[keyTilt]),
		Vibration: coerceFloat(raw[keyVibration]),
	}

	if id, ok := raw[keyDeviceID].(string); ok && id != "" {
		reading.DeviceID = id
	}

	if has1 {
		v := coerceFloat(raw[keySoilMoisture1])
		reading.SoilMoisture1 = &v
	}
	if has2 {
		v := coerceFloat(raw[keySoilMoisture2])
		reading.SoilMoisture2 = &v
	}
	if has3 {
		v := coerceFloat(raw[keySoilMoisture3])
		reading.SoilMoisture3 = &v
	}

	return reading, nil
}

// coerceFloat mirrors the permissive numeric coercion downstream
// classification depends on: absent or unparseable values become 0.
func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
