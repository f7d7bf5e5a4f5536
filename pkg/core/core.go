package core

import (
	"time"

	"slopewatch.dev/slope-telemetry-service/pkg/db"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
	"slopewatch.dev/slope-telemetry-service/pkg/sms"
)

type IReading interface {
	StoreReading(reading *models.SensorReading, result ClassificationResult) (uint, error)
	GetDeviceReadings(deviceID string) ([]models.Reading, error)
}

type IGate interface {
	ShouldDispatch(deviceID string, now time.Time) (bool, error)
	MarkDispatched(deviceID string, now time.Time) error
}

type IFanout interface {
	Dispatch(deviceID string, message string) (int, error)
}

type IDirectory interface {
	GetUserPhone(uid string) (string, error)
	ListSubscribers(deviceID string) ([]models.Subscriber, error)
	AddSubscriber(deviceID string, phoneNumber string) error
}

// Core wires the ingestion pipeline: normalize -> classify -> store ->
// gate-check -> fan-out -> gate-update. Cooldown is the minimum time between
// two dispatch attempts for one device.
type Core struct {
	Db       db.DB
	Cooldown time.Duration
	Sms      sms.Sender
	SmsFrom  string

	Reading   IReading
	Gate      IGate
	Fanout    IFanout
	Directory IDirectory
}

type ServiceOpts struct {
	Reading   IReading
	Gate      IGate
	Fanout    IFanout
	Directory IDirectory
}

func (c *Core) WithServices(opts ServiceOpts) *Core {
	if opts.Reading != nil {
		c.Reading = opts.Reading
	}
	if opts.Gate != nil {
		c.Gate = opts.Gate
	}
	if opts.Fanout != nil {
		c.Fanout = opts.Fanout
	}
	if opts.Directory != nil {
		c.Directory = opts.Directory
	}
	return c
}
