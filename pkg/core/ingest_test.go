package core_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
	_ "slopewatch.dev/slope-telemetry-service/pkg/testing"
)

func TestIngest_NormalReadingSkipsGate(t *testing.T) {
	common.SetTestLoggerNop()

	// gate and fanout mocked with no expectations: a Normal reading must
	// never consult them
	ctrl, coreObj, _, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, true, true, false)
	defer ctrl.Finish()

	deviceID := uuid.NewString()

	result, err := coreObj.Ingest(map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": 65.0,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TierNormal, result.Tier)
	assert.Equal(t, models.MessageNormal, result.AlertMessage)
	assert.Equal(t, 0, result.SmsSentCount)

	// the reading is stored regardless of tier
	var count int64
	err = coreObj.Db.Conn.Model(&models.Reading{}).Where("device_id = ?", deviceID).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIngest_ValidationFailureShortCircuits(t *testing.T) {
	common.SetTestLoggerNop()

	// everything mocked with no expectations: validation fails before any I/O
	ctrl, coreObj, _, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, true, true, true, true)
	defer ctrl.Finish()

	_, err := coreObj.Ingest(map[string]any{"device_id": uuid.NewString()})
	require.Error(t, err)
	_, ok := common.AsValidationError(err)
	assert.True(t, ok)
}

func TestIngest_WarningDispatchesAndEntersCooldown(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, coreObj, _, _, mockFanout, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, true, false)
	defer ctrl.Finish()
	coreObj.Cooldown = 15 * time.Minute

	deviceID := uuid.NewString()

	mockFanout.EXPECT().
		Dispatch(gomock.Eq(deviceID), gomock.Any()).
		Return(2, nil).
		Times(1)

	result, err := coreObj.Ingest(map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": 61.0,
		"soil_moisture_2": 66.0,
		"tilt":            2.5,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TierWarning, result.Tier)
	assert.Equal(t, 2, result.SmsSentCount)

	// the gate recorded the attempt
	var state models.DeviceAlertState
	err = coreObj.Db.Conn.First(&state, "device_id = ?", deviceID).Error
	require.NoError(t, err)
	require.NotNil(t, state.LastAlertSent)
}

func TestIngest_CooldownSuppressesFanout(t *testing.T) {
	common.SetTestLoggerNop()

	// fanout mocked with no expectations: a cooling device must not dispatch
	ctrl, coreObj, _, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, true, false)
	defer ctrl.Finish()
	coreObj.Cooldown = 15 * time.Minute

	deviceID := uuid.NewString()

	tenAgo := time.Now().UTC().Add(-10 * time.Minute)
	err := coreObj.Db.Conn.Create(&models.DeviceAlertState{
		DeviceID:      deviceID,
		LastAlertSent: &tenAgo,
	}).Error
	require.NoError(t, err)

	result, err := coreObj.Ingest(map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": 61.0,
		"soil_moisture_2": 66.0,
		"tilt":            2.5,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TierWarning, result.Tier)
	assert.Equal(t, 0, result.SmsSentCount)

	// suppression leaves the state untouched
	var state models.DeviceAlertState
	err = coreObj.Db.Conn.First(&state, "device_id = ?", deviceID).Error
	require.NoError(t, err)
	require.NotNil(t, state.LastAlertSent)
	assert.True(t, state.LastAlertSent.Equal(tenAgo))
}

func TestIngest_DispatchProceedsAfterWindow(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, coreObj, _, _, mockFanout, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, true, false)
	defer ctrl.Finish()
	coreObj.Cooldown = 15 * time.Minute

	deviceID := uuid.NewString()

	twentyAgo := time.Now().UTC().Add(-20 * time.Minute)
	err := coreObj.Db.Conn.Create(&models.DeviceAlertState{
		DeviceID:      deviceID,
		LastAlertSent: &twentyAgo,
	}).Error
	require.NoError(t, err)

	mockFanout.EXPECT().
		Dispatch(gomock.Eq(deviceID), gomock.Any()).
		Return(1, nil).
		Times(1)

	result, err := coreObj.Ingest(map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": 61.0,
		"soil_moisture_2": 66.0,
		"tilt":            2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SmsSentCount)

	var state models.DeviceAlertState
	err = coreObj.Db.Conn.First(&state, "device_id = ?", deviceID).Error
	require.NoError(t, err)
	assert.True(t, state.LastAlertSent.After(twentyAgo))
}

func TestIngest_CooldownMarkedEvenWhenNoSendSucceeds(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, coreObj, _, _, mockFanout, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, true, false)
	defer ctrl.Finish()

	deviceID := uuid.NewString()

	// zero successful sends still counts as an attempt
	mockFanout.EXPECT().
		Dispatch(gomock.Eq(deviceID), gomock.Any()).
		Return(0, nil).
		Times(1)

	result, err := coreObj.Ingest(map[string]any{
		"device_id":       deviceID,
		"soil_moisture_1": 80.0,
		"soil_moisture_2": 85.0,
		"soil_moisture_3": 90.0,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TierCritical, result.Tier)
	assert.Equal(t, 0, result.SmsSentCount)

	var state models.DeviceAlertState
	err = coreObj.Db.Conn.First(&state, "device_id = ?", deviceID).Error
	require.NoError(t, err)
	require.NotNil(t, state.LastAlertSent)
}

func TestIngest_StoreFailureAbortsRequest(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, coreObj, mockReading, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, true, true, true, false)
	defer ctrl.Finish()

	mockReading.EXPECT().
		StoreReading(gomock.Any(), gomock.Any()).
		Return(uint(0), common.NewDependencyError("store reading", fmt.Errorf("disk full"))).
		Times(1)

	_, err := coreObj.Ingest(map[string]any{
		"device_id":       uuid.NewString(),
		"soil_moisture_1": 80.0,
		"soil_moisture_2": 85.0,
		"soil_moisture_3": 90.0,
	})
	require.Error(t, err)
	_, ok := common.AsDependencyError(err)
	assert.True(t, ok)
}

func TestSendDirectAlert(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, coreObj, _, _, _, _, mockSender := GetMockCoreWithMemorySqliteDialector(t, false, false, false, false)
	defer ctrl.Finish()

	uid := uuid.NewString()
	err := coreObj.Db.Conn.Create(&models.User{UID: uid, PhoneNumber: "+15551230009"}).Error
	require.NoError(t, err)

	mockSender.EXPECT().
		Send(gomock.Eq("+15551230009"), gomock.Eq("+15550000000"), gomock.Eq("manual check requested")).
		Return(nil).
		Times(1)

	sentTo, err := coreObj.SendDirectAlert(uid, "manual check requested")
	require.NoError(t, err)
	assert.Equal(t, "+15551230009", sentTo)
}

func TestSendDirectAlert_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		ctrl, coreObj, _, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, false, false)
		defer ctrl.Finish()

		_, err := coreObj.SendDirectAlert(uuid.NewString(), "hello")
		require.Error(t, err)
		_, ok := common.AsNotFoundError(err)
		assert.True(t, ok)
	}

	{
		// a phone without the "+" marker is not resolvable
		ctrl, coreObj, _, _, _, _, _ := GetMockCoreWithMemorySqliteDialector(t, false, false, false, false)
		defer ctrl.Finish()

		uid := uuid.NewString()
		err := coreObj.Db.Conn.Create(&models.User{UID: uid, PhoneNumber: "015551230009"}).Error
		require.NoError(t, err)

		_, err = coreObj.SendDirectAlert(uid, "hello")
		require.Error(t, err)
		_, ok := common.AsNotFoundError(err)
		assert.True(t, ok)
	}

	{
		// transport failure surfaces as a dependency error
		ctrl, coreObj, _, _, _, _, mockSender := GetMockCoreWithMemorySqliteDialector(t, false, false, false, false)
		defer ctrl.Finish()

		uid := uuid.NewString()
		err := coreObj.Db.Conn.Create(&models.User{UID: uid, PhoneNumber: "+15551230009"}).Error
		require.NoError(t, err)

		mockSender.EXPECT().
			Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("provider down")).
			Times(1)

		_, err = coreObj.SendDirectAlert(uid, "hello")
		require.Error(t, err)
		_, ok := common.AsDependencyError(err)
		assert.True(t, ok)
	}
}
