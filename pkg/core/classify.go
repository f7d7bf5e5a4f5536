package core

import (
	"fmt"

	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

type ClassificationResult struct {
	Tier    models.AlertTier
	Message string
}

// Per-channel risk indicator thresholds. Each channel has its own cutoff;
// they are not interchangeable.
const (
	soil1IndicatorThreshold     = 60.0
	soil2IndicatorThreshold     = 65.0
	soil3IndicatorThreshold     = 65.0
	tiltIndicatorThreshold      = 2.0
	vibrationIndicatorThreshold = 0.03
)

const warningIndicatorCountThreshold = 3

// Critical condition thresholds.
const (
	soil1CriticalThreshold      = 75.0
	soil2CriticalThreshold      = 80.0
	soil3CriticalThreshold      = 85.0
	tiltCriticalThreshold       = 5.0
	vibrationCriticalThreshold  = 0.08
	vibrationStandaloneCritical = 0.20
)

// Classify maps a normalized reading to a risk tier. Pure and deterministic:
// no I/O, no failure modes. Warning is assigned when at least three risk
// indicators fire; the critical check always runs afterwards and overwrites
// the tier when any critical condition holds (last write wins, so Critical
// never downgrades and Warning never re-asserts after Critical).
func Classify(reading *models.SensorReading) ClassificationResult {
	sm1 := reading.Soil1()
	sm2 := reading.Soil2()
	sm3 := reading.Soil3()
	tilt := reading.Tilt
	vibration := reading.Vibration

	result := ClassificationResult{
		Tier:    models.TierNormal,
		Message: models.MessageNormal,
	}

	indicators := 0
	if sm1 > soil1IndicatorThreshold {
		indicators++
	}
	if sm2 > soil2IndicatorThreshold {
		indicators++
	}
	if sm3 > soil3IndicatorThreshold {
		indicators++
	}
	if tilt > tiltIndicatorThreshold {
		indicators++
	}
	if vibration > vibrationIndicatorThreshold {
		indicators++
	}

	if indicators >= warningIndicatorCountThreshold {
		result.Tier = models.TierWarning
		result.Message = models.MessageWarning
	}

	soilCritical := sm1 > soil1CriticalThreshold &&
		sm2 > soil2CriticalThreshold &&
		sm3 > soil3CriticalThreshold
	tiltVibrationCritical := tilt > tiltCriticalThreshold &&
		vibration > vibrationCriticalThreshold
	soilTiltCritical := sm1 > soil1CriticalThreshold &&
		tilt > tiltCriticalThreshold
	vibrationCritical := vibration > vibrationStandaloneCritical

	if soilCritical || tiltVibrationCritical || soilTiltCritical || vibrationCritical {
		result.Tier = models.TierCritical
		result.Message = models.MessageCritical
	}

	return result
}

// RenderAlertText builds the SMS body for a classified reading. The field
// set (tier label, tier number, device id, three soil values, tilt,
// vibration) is fixed for observability parity with stored readings.
func RenderAlertText(reading *models.SensorReading, result ClassificationResult) string {
	return fmt.Sprintf(
		"%s (Level %d) %s: device=%s soil=%.1f/%.1f/%.1f tilt=%.2f vibration=%.3f",
		result.Tier.Label(),
		int(result.Tier),
		result.Message,
		reading.DeviceID,
		reading.Soil1(),
		reading.Soil2(),
		reading.Soil3(),
		reading.Tilt,
		reading.Vibration,
	)
}
