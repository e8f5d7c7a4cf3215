package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the part of the sesv2 client the sender calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers through AWS SES v2.
type SESSender struct {
	client    SESAPI
	fromEmail string
	fromName  string
}

func NewSESSender(client SESAPI, fromEmail, fromName string) *SESSender {
	return &SESSender{client: client, fromEmail: fromEmail, fromName: fromName}
}

// NewSESSenderFromRegion loads AWS credentials from the default chain.
func NewSESSenderFromRegion(ctx context.Context, region, fromEmail, fromName string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESSender(sesv2.NewFromConfig(cfg), fromEmail, fromName), nil
}

func (s *SESSender) buildInput(msg Message) *sesv2.SendEmailInput {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if _, err := s.client.SendEmail(ctx, s.buildInput(msg)); err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

var _ Sender = (*SESSender)(nil)
