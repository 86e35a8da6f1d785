// Package sms sends phone verification codes through Twilio.
package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/infield/user-service/internal/core/domain"
)

const verificationTemplate = "Your Infield ID verification code is %s"

// MessageCreator is the part of the Twilio REST API the gateway uses.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Config controls delivery. In TestMode nothing is sent.
type Config struct {
	SenderID string
	TestMode bool
}

// Gateway implements ports.PhoneNotifier.
type Gateway struct {
	client MessageCreator
	cfg    Config
}

func NewGateway(client MessageCreator, cfg Config) *Gateway {
	return &Gateway{client: client, cfg: cfg}
}

// NewTwilioClient returns the messages API of a Twilio REST client.
func NewTwilioClient(accountSID, authToken string) MessageCreator {
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	}).Api
}

// SendPhoneVerification texts the user's verification token to their phone.
// It reports false without contacting the provider in test mode.
func (g *Gateway) SendPhoneVerification(ctx context.Context, user *domain.User) (bool, error) {
	if g.cfg.TestMode {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetBody(fmt.Sprintf(verificationTemplate, user.PhoneVerificationToken))
	params.SetTo(user.Phone)
	params.SetFrom(g.cfg.SenderID)

	if _, err := g.client.CreateMessage(params); err != nil {
		return false, fmt.Errorf("twilio create message: %w", err)
	}
	return true, nil
}
