// Package notify sends participant-facing messages about roster changes.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Notifier is what the signup handler depends on.
type Notifier interface {
	SignupConfirmation(ctx context.Context, activity, email string) error
}

type EmailNotifier struct {
	client SESService
	from   string
}

func NewEmailNotifier(client SESService, from string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from}
}

func (n *EmailNotifier) SignupConfirmation(ctx context.Context, activity, email string) error {
	subject := fmt.Sprintf("You're signed up for %s", activity)
	body := fmt.Sprintf(
		"Hello,\n\nYou are now registered for %s at Mergington High School.\n"+
			"If this was a mistake, you can unregister from the activities page.\n",
		activity,
	)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", email, err)
	}
	return nil
}
