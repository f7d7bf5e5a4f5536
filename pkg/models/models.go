package models

import "time"

// AlertTier is the ordered risk classification of a reading.
// Ordering is total: TierNormal < TierWarning < TierCritical.
type AlertTier int

const (
	TierNormal   AlertTier = 1
	TierWarning  AlertTier = 2
	TierCritical AlertTier = 3
)

const (
	MessageNormal   string = "Normal but Monitored"
	MessageWarning  string = "Intermediate Warning"
	MessageCritical string = "Critical - Imminent Failure"
)

func (t AlertTier) Label() string {
	switch t {
	case TierWarning:
		return "Warning"
	case TierCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

// SensorReading is the normalized per-request reading. The soil moisture
// fields are pointers so an absent field stays NULL in storage while
// classification reads it as 0.
type SensorReading struct {
	DeviceID      string
	SoilMoisture1 *float64
	SoilMoisture2 *float64
	SoilMoisture3 *float64
	Tilt          float64
	Vibration     float64
}

func (r *SensorReading) Soil1() float64 { return derefOrZero(r.SoilMoisture1) }
func (r *SensorReading) Soil2() float64 { return derefOrZero(r.SoilMoisture2) }
func (r *SensorReading) Soil3() float64 { return derefOrZero(r.SoilMoisture3) }

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Reading is a stored classified reading. Immutable once written; per-device
// ordering is the insertion order of writes.
type Reading struct {
	ID            uint   `gorm:"primaryKey"`
	DeviceID      string `gorm:"index"`
	Timestamp     time.Time
	SoilMoisture1 *float64
	SoilMoisture2 *float64
	SoilMoisture3 *float64
	Tilt          float64
	Vibration     float64
	Tier          AlertTier
	Message       string
}

// DeviceAlertState records the last alert dispatch attempt per device.
// LastAlertSent is nil until the first attempt and tracks attempt, not
// delivery success. Never deleted by this service.
type DeviceAlertState struct {
	DeviceID      string `gorm:"primaryKey"`
	LastAlertSent *time.Time
}

// Subscriber is a phone number interested in alerts for one device. Only
// numbers with a leading "+" are eligible for dispatch.
type Subscriber struct {
	ID          uint   `gorm:"primaryKey"`
	DeviceID    string `gorm:"index"`
	PhoneNumber string
}

// User backs the uid -> phone directory lookup for direct alerts.
type User struct {
	UID         string `gorm:"primaryKey"`
	PhoneNumber string
}
