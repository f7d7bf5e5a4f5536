package sms

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"slopewatch.dev/slope-telemetry-service/pkg/common"
)

// Sender is the SMS transport consumed by the alert fan-out. Delivery is
// best effort; a non-nil error means the provider rejected or never
// received the message, not that the message failed to reach the handset.
type Sender interface {
	Send(to string, from string, body string) error
}

// LogSender writes messages to the service log instead of a provider.
// Used in development and as the fallback when no provider is configured.
type LogSender struct{}

func (s *LogSender) Send(to string, from string, body string) error {
	logger := common.GetLoggerWith(common.LoggerNameSmsSender)
	logger.Info("SMS (log provider)",
		zap.String("to", to),
		zap.String("from", from),
		zap.String("body", body))
	return nil
}

const twilioApiBase = "https://api.twilio.com"

// TwilioSender posts messages to the Twilio Messages REST endpoint.
type TwilioSender struct {
	AccountSid string
	AuthToken  string
	BaseURL    string // defaults to the Twilio API host, overridable in tests
	Client     *http.Client
}

func NewTwilioSender(accountSid string, authToken string) *TwilioSender {
	return &TwilioSender{
		AccountSid: accountSid,
		AuthToken:  authToken,
		BaseURL:    twilioApiBase,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TwilioSender) Send(to string, from string, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.BaseURL, s.AccountSid)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.AccountSid, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio responded %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// FromEnv picks the sender by SLOPE_SMS_PROVIDER: "twilio" builds a
// TwilioSender from the TWILIO_* credentials, anything else logs.
func FromEnv() Sender {
	if os.Getenv(common.EnvKeySlopeSmsProvider) == "twilio" {
		return NewTwilioSender(
			os.Getenv(common.EnvKeyTwilioAccountSid),
			os.Getenv(common.EnvKeyTwilioAuthToken),
		)
	}
	return &LogSender{}
}
