package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/report"
)

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// DeliveryFailure records a single recipient that could not be delivered to,
// with the provider's reason.
type DeliveryFailure struct {
	Address string
	Reason  string
}

// DeliveryResult is the per-category outcome of a dispatch run.
type DeliveryResult struct {
	Category  string
	Delivered []string
	Failed    []DeliveryFailure
}

// OK returns true if every recipient in the category was delivered to.
func (r DeliveryResult) OK() bool {
	return len(r.Failed) == 0
}

// DeliveryError reports the categories that failed to dispatch. Categories
// are isolated from each other so a DeliveryError never implies that every
// report failed.
type DeliveryError struct {
	Categories []string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed for %s", strings.Join(e.Categories, ", "))
}

// Dispatcher sends report emails through SendGrid.
type Dispatcher struct {
	client sender
	from   string
	logger *slog.Logger
}

func NewDispatcher(apiKey string, from string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// DispatchAll routes and sends every report artifact. Each category is
// dispatched independently and a failure in one category never prevents the
// others from being attempted. The returned results always cover every
// artifact; the error is non-nil if any category failed.
func (d *Dispatcher) DispatchAll(ctx context.Context, cfg *config.Config, artifacts []report.Artifact) ([]DeliveryResult, error) {
	results := make([]DeliveryResult, len(artifacts))

	var wg sync.WaitGroup
	for i, artifact := range artifacts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.dispatch(ctx, cfg, artifact)
		}()
	}

	wg.Wait()

	failed := []string{}
	for _, result := range results {
		if !result.OK() {
			failed = append(failed, result.Category)
		}
	}

	if len(failed) > 0 {
		return results, &DeliveryError{Categories: failed}
	}

	return results, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, cfg *config.Config, artifact report.Artifact) DeliveryResult {
	result := DeliveryResult{
		Category: artifact.Category,
	}

	recipients, err := Route(cfg, artifact.Category)
	if err != nil {
		result.Failed = append(result.Failed, DeliveryFailure{Reason: err.Error()})
		return result
	}

	email, err := d.build(artifact, recipients)
	if err != nil {
		for _, recipient := range recipients {
			result.Failed = append(result.Failed, DeliveryFailure{Address: recipient, Reason: err.Error()})
		}
		return result
	}

	response, err := d.client.SendWithContext(ctx, email)
	if err != nil {
		for _, recipient := range recipients {
			result.Failed = append(result.Failed, DeliveryFailure{Address: recipient, Reason: err.Error()})
		}
		return result
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		reason := fmt.Sprintf("request rejected with status %d", response.StatusCode)
		for _, recipient := range recipients {
			result.Failed = append(result.Failed, DeliveryFailure{Address: recipient, Reason: reason})
		}

		d.logger.Error("report not delivered", "category", artifact.Category, "status", response.StatusCode)

		return result
	}

	result.Delivered = recipients

	d.logger.Info("report delivered", "category", artifact.Category, "recipients", len(recipients))

	return result
}

func (d *Dispatcher) build(artifact report.Artifact, recipients []string) (*mail.SGMailV3, error) {
	email := mail.NewV3Mail()
	email.SetFrom(mail.NewEmail("", d.from))
	email.Subject = artifact.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}

	email.AddPersonalizations(personalization)
	email.AddContent(mail.NewContent("text/html", artifact.HTML))

	for _, a := range artifact.Attachments {
		content, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to read attachment %s (%v)", a.Filename, err)
		}

		attachment := mail.NewAttachment()
		attachment.SetFilename(a.Filename)
		attachment.SetType(a.ContentType)
		attachment.SetContent(base64.StdEncoding.EncodeToString(content))

		if a.Inline {
			attachment.SetDisposition("inline")
			attachment.SetContentID(a.ContentID)
		} else {
			attachment.SetDisposition("attachment")
		}

		email.AddAttachment(attachment)
	}

	return email, nil
}
