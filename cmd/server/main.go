package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
	"slopewatch.dev/slope-telemetry-service/pkg/core"
	"slopewatch.dev/slope-telemetry-service/pkg/db"
	slopeHttp "slopewatch.dev/slope-telemetry-service/pkg/http"
	"slopewatch.dev/slope-telemetry-service/pkg/sms"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	slopeDbType := os.Getenv(common.EnvKeySlopeDBType)
	switch slopeDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown SLOPE_DB_TYPE: " + slopeDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeySlopeHttpHostPort))

	cooldown := core.DefaultCooldown
	if raw := strings.TrimSpace(os.Getenv(common.EnvKeySlopeCooldownMinutes)); raw != "" {
		minutes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || minutes <= 0 {
			log.Fatal("Invalid SLOPE_COOLDOWN_MINUTES, should be a positive int value")
		}
		cooldown = time.Duration(minutes) * time.Minute
	}

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeySlopeDefaultRate), 64); err != nil {
		log.Fatal("Invalid SLOPE_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeySlopeDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid SLOPE_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	slopeCore := &core.Core{
		Db:       *dbInstance,
		Cooldown: cooldown,
		Sms:      sms.FromEnv(),
		SmsFrom:  os.Getenv(common.EnvKeySlopeSmsFrom),
	}
	slopeCore.WithServices(core.ServiceOpts{
		Reading:   slopeCore.GetIReading(),
		Gate:      slopeCore.GetIGate(),
		Fanout:    slopeCore.GetIFanout(),
		Directory: slopeCore.GetIDirectory(),
	})

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &slopeHttp.RestfulServer{
		Server:           gin.Default(),
		Core:             slopeCore,
		RateLimiterStore: core.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)),
		zap.Duration("cooldown", cooldown))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
