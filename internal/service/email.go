package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/validation"
	"github.com/resend/resend-go/v2"
)

// Notifier tells a user about milestones on their journey.
type Notifier interface {
	MilestoneReached(ctx context.Context, user *model.User, j *model.GoalJourney, c journey.Celebration) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) MilestoneReached(ctx context.Context, user *model.User, j *model.GoalJourney, c journey.Celebration) error {
	err := validation.ValidateEmail(user.Email)
	if err != nil {
		slog.Debug("milestone email skipped", "user_id", user.ID, "reason", err)
		return nil
	}

	journeyURL := fmt.Sprintf("%s/journeys/%s", s.appURL, j.ID)
	subject, body := milestoneEmailTemplate(user.Name, j.GoalContent, c, journeyURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "milestone", "milestone", c.Kind, "to", user.Email, "subject", subject, "url", journeyURL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{user.Email},
		Subject: subject,
		Text:    body,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "milestone", "milestone", c.Kind, "to", user.Email)
	}
	return err
}
