package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/ynab-importer/internal/models"
)

const (
	communicationScope = "https://communication.azure.com//.default"
	emailAPIVersion    = "2023-03-31"
)

// EmailService sends import notifications via the Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates a new EmailService instance.
// If cred is nil, it defaults to using DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential) (*EmailService, error) {
	endpoint := os.Getenv("COMMUNICATION_SERVICES_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT environment variable is required")
	}

	sender := os.Getenv("SENDER_EMAIL")
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, err
		}
	}

	return &EmailService{
		endpoint:   endpoint,
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

func newEmailRequest(sender string, to []string, subject, body string) emailRequest {
	recipients := make([]emailAddress, len(to))
	for i, addr := range to {
		recipients[i] = emailAddress{Address: addr}
	}
	return emailRequest{
		SenderAddress: sender,
		Content:       emailContent{Subject: subject, HTML: body},
		Recipients:    emailRecipients{To: recipients},
	}
}

// SendEmail sends an HTML email to the given recipients.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{communicationScope},
	})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	jsonBody, err := json.Marshal(newEmailRequest(s.sender, to, subject, body))
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=%s", strings.TrimRight(s.endpoint, "/"), emailAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	slog.Info("email sent", "recipients", len(to), "subject", subject, "operation_id", resp.Header.Get("Operation-Location"))
	return nil
}

// SendImportSummary emails the outcome of an import run.
func (s *EmailService) SendImportSummary(ctx context.Context, recipients []string, run models.ImportRun) error {
	return s.SendEmail(ctx, recipients, summarySubject(run), RenderImportSummary(run))
}

func summarySubject(run models.ImportRun) string {
	switch {
	case run.Status == models.RunFailed:
		return "YNAB Import - Failed"
	case run.Imported == 0:
		return "YNAB Import - Nothing New"
	default:
		return fmt.Sprintf("YNAB Import - %d Imported", run.Imported)
	}
}
