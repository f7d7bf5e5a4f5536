package core_test

import (
	"bufio"
	"encoding/json"
	"io"
	. "slopewatch.dev/slope-telemetry-service/pkg/core"
	"testing"

	"go.uber.org/mock/gomock"
	"slopewatch.dev/slope-telemetry-service/pkg/core/mocks"
	"slopewatch.dev/slope-telemetry-service/pkg/db"
	smsmocks "slopewatch.dev/slope-telemetry-service/pkg/sms/mocks"
)

func GetMockCoreWithMemorySqliteDialector(t *testing.T, useMockReading, useMockGate, useMockFanout, useMockDirectory bool) (
	*gomock.Controller,
	*Core,
	*mocks.MockIReading,
	*mocks.MockIGate,
	*mocks.MockIFanout,
	*mocks.MockIDirectory,
	*smsmocks.MockSender,
) {
	ctrl := gomock.NewController(t)

	mockReading := mocks.NewMockIReading(ctrl)
	mockGate := mocks.NewMockIGate(ctrl)
	mockFanout := mocks.NewMockIFanout(ctrl)
	mockDirectory := mocks.NewMockIDirectory(ctrl)
	mockSender := smsmocks.NewMockSender(ctrl)

	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	coreInstance := &Core{
		Db:      *dbInstance,
		Sms:     mockSender,
		SmsFrom: "+15550000000",
	}

	readingService := coreInstance.GetIReading()
	if useMockReading {
		readingService = mockReading
	}

	gateService := coreInstance.GetIGate()
	if useMockGate {
		gateService = mockGate
	}

	fanoutService := coreInstance.GetIFanout()
	if useMockFanout {
		fanoutService = mockFanout
	}

	directoryService := coreInstance.GetIDirectory()
	if useMockDirectory {
		directoryService = mockDirectory
	}

	coreInstance.WithServices(ServiceOpts{
		Reading:   readingService,
		Gate:      gateService,
		Fanout:    fanoutService,
		Directory: directoryService,
	})

	return ctrl, coreInstance, mockReading, mockGate, mockFanout, mockDirectory, mockSender
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
