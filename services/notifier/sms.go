package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

const maxSMSTitle = 50

// messageCreator is the part of the Twilio API the notifier uses
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSNotifier sends one text message per listing through Twilio
type SMSNotifier struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string

	api messageCreator
	log *logger.Logger
}

// NewSMSNotifier creates a Twilio notifier sending through httpClient. It
// stays disabled unless every credential and both phone numbers are set.
func NewSMSNotifier(accountSID, authToken, from, to string, httpClient *http.Client) *SMSNotifier {
	restClient := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(accountSID, authToken),
		HTTPClient:  httpClient,
	}
	restClient.SetAccountSid(accountSID)

	n := &SMSNotifier{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		To:         to,
		api: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   accountSID,
			Password:   authToken,
			AccountSid: accountSID,
			Client:     restClient,
		}).Api,
		log: logger.ForNotifier("sms"),
	}
	if !n.Enabled() {
		n.log.Warn().Msg("Twilio credentials incomplete, SMS disabled")
	}
	return n
}

func (n *SMSNotifier) Name() string {
	return "sms"
}

// Enabled reports whether the notifier has everything it needs to send
func (n *SMSNotifier) Enabled() bool {
	return n.AccountSID != "" && n.AuthToken != "" && n.From != "" && n.To != ""
}

// Body formats the text message for a listing
func Body(item listing.Listing) string {
	title := []rune(orDefault(item.Title, "Unknown"))
	if len(title) > maxSMSTitle {
		title = title[:maxSMSTitle]
	}
	return fmt.Sprintf("[%s] %s - %s\n%s",
		orDefault(item.Source, "unknown"), string(title), orDefault(item.Price, "N/A"), item.URL)
}

// SendItem sends one message. The Twilio SDK has no context support, so
// ctx only stops a message from being started.
func (n *SMSNotifier) SendItem(ctx context.Context, item listing.Listing) error {
	if !n.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return scrapeerrors.NewNotify("sms", "send cancelled", err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetPathAccountSid(n.AccountSID)
	params.SetTo(n.To)
	params.SetFrom(n.From)
	params.SetBody(Body(item))

	msg, err := n.api.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			err = fmt.Errorf("%w: %s", scrapeerrors.NewStatus("twilio", restErr.Status), restErr.Message)
		}
		return scrapeerrors.NewNotify("sms", "failed to send SMS", err)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	n.log.Info().Str("sid", sid).Msg("SMS sent")
	return nil
}

// SendItems sends every listing and keeps going past failures; the first
// failure is returned
func (n *SMSNotifier) SendItems(ctx context.Context, items []listing.Listing) error {
	var first error
	for _, item := range items {
		if err := n.SendItem(ctx, item); err != nil {
			n.log.Error().Err(err).Str("url", item.URL).Msg("Failed to send SMS")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
