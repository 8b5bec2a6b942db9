package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"aitutor/internal/auth"
	"aitutor/internal/logger"
	"aitutor/internal/models"
)

const welcomeSendTimeout = 15 * time.Second

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	log        *logger.Logger
	client     emailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool

	wg sync.WaitGroup
}

// NewEmailService creates a new email service. Without fromEmail the service
// is disabled and every send is skipped.
func NewEmailService(ctx context.Context, log *logger.Logger, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	log = log.With("service", "EmailService")
	if fromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Email service enabled", "from", fromEmail, "region", awsRegion)
	return newEmailService(log, sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL), nil
}

func newEmailService(log *logger.Logger, client emailSender, fromEmail, fromName, appBaseURL string) *EmailService {
	return &EmailService{
		log:        log,
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #6366f1; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #6366f1; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>Welcome to AI Tutor!</h1></div>
		<div class="content">
			<p>Hi {{.Name}},</p>
			<p>Your AI Tutor account is ready.</p>
			<ul>
				{{if .Child}}<li>Check your tasks on your dashboard</li>
				<li>Write down what you want to learn and let AI Tutor structure it</li>
				{{else}}<li>Register your children in your profile</li>
				<li>Set learning goals and follow their progress</li>{{end}}
			</ul>
			<p style="text-align: center;"><a href="{{.LoginURL}}" class="button">Get Started</a></p>
		</div>
		<div class="footer"><p>This is an automated email from AI Tutor. Please do not reply.</p></div>
	</div>
</body>
</html>
`))

// SendWelcomeEmail sends a welcome email to a new user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string, child bool) error {
	if !s.enabled {
		s.log.Debug("Skipping welcome email (service disabled)", "to", toEmail)
		return nil
	}

	loginURL := s.appBaseURL + "/login"
	var html bytes.Buffer
	err := welcomeHTML.Execute(&html, struct {
		Name     string
		Child    bool
		LoginURL string
	}{toName, child, loginURL})
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	text := fmt.Sprintf("Hi %s,\n\nYour AI Tutor account is ready.\n\nGet started: %s\n\n---\nThis is an automated email from AI Tutor. Please do not reply.\n", toName, loginURL)

	return s.sendEmail(ctx, toEmail, "Welcome to AI Tutor!", html.String(), text)
}

// WelcomeListener returns an auth listener that mails every new sign-up.
// Sends run in the background; Wait blocks until they finish.
func (s *EmailService) WelcomeListener() auth.Listener {
	return func(c auth.Change) {
		if c.Event != auth.EventSignedUp || c.Session == nil || c.Session.User.Email == "" {
			return
		}
		user := c.Session.User
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), welcomeSendTimeout)
			defer cancel()
			if err := s.SendWelcomeEmail(ctx, user.Email, user.DisplayName(), user.Role == models.RoleChild); err != nil {
				s.log.Warn("Welcome email failed", "to", user.Email, "error", err.Error())
			}
		}()
	}
}

// Wait blocks until background sends have finished
func (s *EmailService) Wait() {
	s.wg.Wait()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	messageID := ""
	if result != nil && result.MessageId != nil {
		messageID = *result.MessageId
	}
	s.log.Info("Email sent", "to", toEmail, "subject", subject, "message_id", messageID)
	return nil
}
