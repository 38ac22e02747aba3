package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"veridoc/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendReviewAlert(ctx context.Context, recipients []string, alert port.ReviewAlert) error {
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Document %s needs review (%d critical)", alert.DocumentID, alert.CriticalCount)
	htmlBody := buildReviewAlertHTML(alert)
	textBody := buildReviewAlertText(alert)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewAlertText(alert port.ReviewAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document %s (%s) was parsed but did not pass automatic verification.\n\n", alert.DocumentID, alert.DocumentType)
	fmt.Fprintf(&b, "Critical findings: %d\nWarnings: %d\n", alert.CriticalCount, alert.WarningCount)
	if len(alert.ConflictFields) > 0 {
		fmt.Fprintf(&b, "Fields where the extraction models disagreed: %s\n", strings.Join(alert.ConflictFields, ", "))
	}
	fmt.Fprintf(&b, "\nReview it here:\n%s\n\nVERIDOC Team", alert.ReviewURL)
	return b.String()
}

func buildReviewAlertHTML(alert port.ReviewAlert) string {
	conflicts := ""
	if len(alert.ConflictFields) > 0 {
		conflicts = fmt.Sprintf(`<p>Fields where the extraction models disagreed: <strong>%s</strong></p>`, strings.Join(alert.ConflictFields, ", "))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document needs review</h2>
  <p>Document <strong>%s</strong> (%s) was parsed but did not pass automatic verification.</p>
  <p>Critical findings: <strong>%d</strong><br>Warnings: %d</p>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Open Review</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">VERIDOC - Document Verification Platform</p>
</body>
</html>`, alert.DocumentID, alert.DocumentType, alert.CriticalCount, alert.WarningCount, conflicts, alert.ReviewURL)
}
