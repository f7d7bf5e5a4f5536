package core

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

// getUserPhone resolves the phone number for a uid. Numbers without the
// leading "+" international marker are treated as unresolvable.
func (c *Core) getUserPhone(uid string) (string, error) {
	var user models.User
	if err := c.Db.Conn.First(&user, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", common.NewNotFoundError("no phone number for uid " + uid)
		}
		return "", common.NewDependencyError("lookup user phone", err)
	}

	if !strings.HasPrefix(user.PhoneNumber, "+") {
		return "", common.NewNotFoundError("no usable phone number for uid " + uid)
	}

	return user.PhoneNumber, nil
}

func (c *Core) listSubscribers(deviceID string) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	err := c.Db.Conn.
		Where("device_id = ?", deviceID).
		Find(&subscribers).Error
	if err != nil {
		return nil, common.NewDependencyError("list subscribers", err)
	}
	return subscribers, nil
}

func (c *Core) addSubscriber(deviceID string, phoneNumber string) error {
	logger := common.GetLoggerWith(
		common.LoggerNameSlopeCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryDirectory),
	)

	subscriber := models.Subscriber{
		DeviceID:    deviceID,
		PhoneNumber: phoneNumber,
	}

	if err := c.Db.Conn.Create(&subscriber).Error; err != nil {
		return common.NewDependencyError("add subscriber", err)
	}

	logger.Info("Subscriber registered", zap.Reflect("subscriber", subscriber))

	return nil
}

type IDirectoryImpl struct {
	core *Core
}

func (id *IDirectoryImpl) GetUserPhone(uid string) (string, error) {
	return id.core.getUserPhone(uid)
}

func (id *IDirectoryImpl) ListSubscribers(deviceID string) ([]models.Subscriber, error) {
	return id.core.listSubscribers(deviceID)
}

func (id *IDirectoryImpl) AddSubscriber(deviceID string, phoneNumber string) error {
	return id.core.addSubscriber(deviceID, phoneNumber)
}

func (c *Core) GetIDirectory() IDirectory {
	return &IDirectoryImpl{core: c}
}
