package core

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

const DefaultCooldown = 15 * time.Minute

// shouldDispatch reports whether the device is armed, i.e. no alert was
// dispatched within the cooldown window. An absent state record reads as
// last-alert-sent = epoch, so a device's first eligible reading always
// dispatches.
//
// The read here and the write in markDispatched are not synchronized across
// requests: two near-simultaneous eligible readings for one device can both
// observe the armed state and both dispatch.
func (c *Core) shouldDispatch(deviceID string, now time.Time) (bool, error) {
	var state models.DeviceAlertState
	if err := c.Db.Conn.First(&state, "device_id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, common.NewDependencyError("read device alert state", err)
	}

	if state.LastAlertSent == nil {
		return true, nil
	}

	return now.Sub(*state.LastAlertSent) >= c.cooldown(), nil
}

// markDispatched records a dispatch attempt. Cooldown tracks attempt, not
// delivery success, so this runs after fan-out regardless of how many
// individual sends succeeded.
func (c *Core) markDispatched(deviceID string, now time.Time) error {
	logger := common.GetLoggerWith(
		common.LoggerNameSlopeCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryGate),
	)

	state := models.DeviceAlertState{
		DeviceID:      deviceID,
		LastAlertSent: &now,
	}

	err := c.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		UpdateAll: true,
	}).Create(&state).Error

	if err != nil {
		return common.NewDependencyError("update device alert state", err)
	}

	logger.Info("Device entered cooldown", zap.String("device_id", deviceID), zap.Time("last_alert_sent", now))

	return nil
}

func (c *Core) cooldown() time.Duration {
	if c.Cooldown <= 0 {
		return DefaultCooldown
	}
	return c.Cooldown
}

type IGateImpl struct {
	core *Core
}

func (ig *IGateImpl) ShouldDispatch(deviceID string, now time.Time) (bool, error) {
	return ig.core.shouldDispatch(deviceID, now)
}

func (ig *IGateImpl) MarkDispatched(deviceID string, now time.Time) error {
	return ig.core.markDispatched(deviceID, now)
}

func (c *Core) GetIGate() IGate {
	return &IGateImpl{core: c}
}
