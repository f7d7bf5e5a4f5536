package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeySlopeDBType string = "SLOPE_DB_TYPE"
	EnvKeySlopeDbPath string = "SLOPE_DB_PATH"

	EnvKeySlopeHttpHostPort string = "SLOPE_HTTP_HOST_PORT"

	EnvKeySlopeCooldownMinutes string = "SLOPE_COOLDOWN_MINUTES"

	EnvKeySlopeDefaultRate  string = "SLOPE_DEFAULT_RATE"
	EnvKeySlopeDefaultBurst string = "SLOPE_DEFAULT_BURST"

	EnvKeySlopeSmsProvider string = "SLOPE_SMS_PROVIDER"
	EnvKeySlopeSmsFrom     string = "SLOPE_SMS_FROM"

	EnvKeyTwilioAccountSid string = "TWILIO_ACCOUNT_SID"
	EnvKeyTwilioAuthToken  string = "TWILIO_AUTH_TOKEN"

	LoggerNameSlopeCore     string = "slope_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameSmsSender     string = "sms_sender"
	LoggerFieldCategory     string = "category"
	LoggerCategoryNormalize string = "normalize"
	LoggerCategoryReading   string = "reading"
	LoggerCategoryGate      string = "gate"
	LoggerCategoryFanout    string = "fanout"
	LoggerCategoryDirectory string = "directory"
)
