package core

import (
	"time"

	"go.uber.org/zap"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

func (c *Core) storeReading(reading *models.SensorReading, result ClassificationResult) (uint, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameSlopeCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryReading),
	)

	record := models.Reading{
		DeviceID:      reading.DeviceID,
		Timestamp:     time.Now().UTC(),
		SoilMoisture1: reading.SoilMoisture1,
		SoilMoisture2: reading.SoilMoisture2,
		SoilMoisture3: reading.SoilMoisture3,
		Tilt:          reading.Tilt,
		Vibration:     reading.Vibration,
		Tier:          result.Tier,
		Message:       result.Message,
	}

	logger.Info("Received reading for device", zap.Reflect("reading", record))

	if err := c.Db.Conn.Create(&record).Error; err != nil {
		return 0, common.NewDependencyError("store reading", err)
	}

	logger.Info("Stored reading for device", zap.Reflect("reading", record))

	return record.ID, nil
}

func (c *Core) getDeviceReadings(deviceID string) ([]models.Reading, error) {
	var readings []models.Reading
	err := c.Db.Conn.
		Where("device_id = ?", deviceID).
		Order("id desc").
		Find(&readings).Error
	if err != nil {
		return nil, common.NewDependencyError("list readings", err)
	}
	return readings, nil
}

type IReadingImpl struct {
	core *Core
}

func (ir *IReadingImpl) StoreReading(reading *models.SensorReading, result ClassificationResult) (uint, error) {
	return ir.core.storeReading(reading, result)
}

func (ir *IReadingImpl) GetDeviceReadings(deviceID string) ([]models.Reading, error) {
	return ir.core.getDeviceReadings(deviceID)
}

func (c *Core) GetIReading() IReading {
	return &IReadingImpl{core: c}
}
