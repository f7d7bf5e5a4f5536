package core

import (
	"time"

	"go.uber.org/zap"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

type IngestResult struct {
	Tier         models.AlertTier
	AlertMessage string
	SmsSentCount int
}

// Ingest runs one reading through the pipeline: normalize -> classify ->
// store -> gate-check -> fan-out -> gate-update. The store write is awaited
// before returning so a stored reading is guaranteed by the time the caller
// acks; the gate is only consulted for tiers at Warning or above, and a
// suppressed dispatch leaves the device state untouched.
func (c *Core) Ingest(raw map[string]any) (*IngestResult, error) {
	reading, err := NormalizeReading(raw)
	if err != nil {
		return nil, err
	}

	result := Classify(reading)

	if _, err := c.Reading.StoreReading(reading, result); err != nil {
		return nil, err
	}

	ingest := &IngestResult{
		Tier:         result.Tier,
		AlertMessage: result.Message,
	}

	if result.Tier < models.TierWarning {
		return ingest, nil
	}

	now := time.Now().UTC()

	armed, err := c.Gate.ShouldDispatch(reading.DeviceID, now)
	if err != nil {
		return nil, err
	}
	if !armed {
		logger := common.GetLoggerWith(
			common.LoggerNameSlopeCore,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryGate),
		)
		logger.Info("Alert suppressed by cooldown",
			zap.String("device_id", reading.DeviceID),
			zap.Int("tier", int(result.Tier)))
		return ingest, nil
	}

	sent, err := c.Fanout.Dispatch(reading.DeviceID, RenderAlertText(reading, result))
	if err != nil {
		return nil, err
	}
	ingest.SmsSentCount = sent

	// cooldown tracks the attempt, not delivery success
	if err := c.Gate.MarkDispatched(reading.DeviceID, now); err != nil {
		return nil, err
	}

	return ingest, nil
}

// SendDirectAlert resolves the phone for a uid and sends one message. Used
// by the manual alert endpoint; returns the number the message went to.
func (c *Core) SendDirectAlert(uid string, message string) (string, error) {
	phone, err := c.Directory.GetUserPhone(uid)
	if err != nil {
		return "", err
	}

	if err := c.Sms.Send(phone, c.SmsFrom, message); err != nil {
		return "", common.NewDependencyError("send sms", err)
	}

	return phone, nil
}
