package core

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/models"
)

// dispatch sends the alert text to every eligible subscriber of the device
// concurrently and returns the number of sends that completed without error.
// Each send is independent: a failed send is logged and counted out, it
// never cancels the others and never fails the overall call. Delivery is
// attempted at most once per subscriber.
func (c *Core) dispatch(deviceID string, message string) (int, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameSlopeCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryFanout),
	)

	subscribers, err := c.Directory.ListSubscribers(deviceID)
	if err != nil {
		return 0, err
	}

	eligible := make([]models.Subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		if strings.HasPrefix(sub.PhoneNumber, "+") {
			eligible = append(eligible, sub)
		} else {
			logger.Info("Skipping subscriber without international phone format",
				zap.String("device_id", deviceID),
				zap.String("phone_number", sub.PhoneNumber))
		}
	}

	if len(eligible) == 0 {
		return 0, nil
	}

	outcomes := make([]error, len(eligible))
	var wg sync.WaitGroup
	for i, sub := range eligible {
		i, sub := i, sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = c.Sms.Send(sub.PhoneNumber, c.SmsFrom, message)
		}()
	}
	wg.Wait()

	for i, err := range outcomes {
		if err != nil {
			logger.Error("Failed to send alert to subscriber",
				zap.String("device_id", deviceID),
				zap.String("phone_number", eligible[i].PhoneNumber),
				zap.Error(err))
		}
	}

	sent := common.Reducer(outcomes, func(acc int, err error) int {
		if err == nil {
			acc++
		}
		return acc
	}, 0)

	logger.Info("Alert fanout completed",
		zap.String("device_id", deviceID),
		zap.Int("eligible", len(eligible)),
		zap.Int("sent", sent))

	return sent, nil
}

type IFanoutImpl struct {
	core *Core
}

func (ifo *IFanoutImpl) Dispatch(deviceID string, message string) (int, error) {
	return ifo.core.dispatch(deviceID, message)
}

func (c *Core) GetIFanout() IFanout {
	return &IFanoutImpl{core: c}
}
