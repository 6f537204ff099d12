// Package email renders a curated newsletter as a responsive HTML email
// and sends it through Resend, falling back to SMTP when Resend is not
// configured.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/logger"
)

// newsletterTemplate is the HTML email body. Tweet items with a screenshot
// render as an image card; everything else renders as an article card.
const newsletterTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.NewsletterName}}</title>
  <style type="text/css">
    body {
      margin: 0;
      padding: 0;
      background-color: #f8fafc;
      font-family: system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif;
      color: #1e293b;
      line-height: 1.6;
    }
    .container {
      max-width: 600px;
      margin: 0 auto;
      background-color: #ffffff;
      border: 1px solid #e2e8f0;
      border-radius: 8px;
      overflow: hidden;
    }
    .header {
      background-color: #2563eb;
      color: #ffffff;
      padding: 24px;
      text-align: center;
    }
    .header h1 { margin: 0; font-size: 24px; font-weight: 600; }
    .header .date { margin: 8px 0 0 0; font-size: 14px; opacity: 0.9; }
    .content { padding: 24px; }
    .item-card {
      border: 1px solid #e2e8f0;
      border-radius: 8px;
      padding: 16px;
      margin-bottom: 16px;
    }
    .item-card h3 { margin: 0 0 8px 0; font-size: 18px; }
    .item-card a { color: #3b82f6; text-decoration: none; }
    .item-meta { font-size: 13px; color: #64748b; margin-bottom: 8px; }
    .item-relevance {
      font-size: 14px;
      color: #475569;
      border-left: 3px solid #2563eb;
      padding-left: 12px;
      margin-top: 12px;
    }
    .item-thumbnail { max-width: 100%; border-radius: 6px; margin-top: 12px; }
    .tweet-screenshot { max-width: 100%; border-radius: 6px; }
    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #94a3b8;
      text-align: center;
      border-top: 1px solid #e2e8f0;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.NewsletterName}}</h1>
      <p class="date">{{.Date}}</p>
    </div>
    <div class="content">
      {{range .Items}}
      <div class="item-card">
        {{if and (eq .SourceType "tweet") .ScreenshotURL}}
        <a href="{{.URL}}"><img class="tweet-screenshot" src="{{.ScreenshotURL}}" alt="Post by {{.AuthorHandle}}"></a>
        {{if .AuthorHandle}}<p class="item-meta">{{.AuthorHandle}}</p>{{end}}
        {{else}}
        <h3><a href="{{.URL}}">{{.Headline}}</a></h3>
        <p class="item-meta">{{.SourceName}}{{if .PublishedAt}} &middot; {{.PublishedAt.Format "Jan 2, 2006"}}{{end}}</p>
        <p>{{.Summary}}</p>
        {{if .ThumbnailURL}}<img class="item-thumbnail" src="{{.ThumbnailURL}}" alt="">{{end}}
        {{end}}
        {{if .Relevance}}<p class="item-relevance">{{.Relevance}}</p>{{end}}
      </div>
      {{end}}
    </div>
    <div class="footer">
      <p>Curated for your interests: {{.Interests}}</p>
      <p><a href="{{.SiteURL}}">Manage preferences</a></p>
    </div>
  </div>
</body>
</html>`

// templateData is the render context for newsletterTemplate.
type templateData struct {
	NewsletterName string
	Date           string
	Items          []core.ContentItem
	Interests      string
	SiteURL        string
}

// RenderNewsletter renders a curated newsletter into the HTML email body.
func RenderNewsletter(appCfg config.App, curated core.CuratedNewsletter) (string, error) {
	tmpl, err := template.New("newsletter").Parse(newsletterTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse newsletter template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, templateData{
		NewsletterName: appCfg.NewsletterName,
		Date:           curated.GeneratedAt.Format("January 2, 2006"),
		Items:          curated.Items,
		Interests:      strings.Join(curated.InterestsUsed, ", "),
		SiteURL:        appCfg.SiteURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render newsletter template: %w", err)
	}
	return buf.String(), nil
}

// Emailer sends HTML email through Resend when an API key is configured,
// falling back to SMTP otherwise.
type Emailer struct {
	cfg    config.Email
	client *http.Client

	resendURL string
}

// NewEmailer creates an emailer from configuration.
func NewEmailer(cfg config.Email) *Emailer {
	return &Emailer{
		cfg:       cfg,
		client:    &http.Client{Timeout: 30 * time.Second},
		resendURL: "https://api.resend.com/emails",
	}
}

// Send delivers an HTML email. It reports success as a bool rather than
// failing the caller: a send failure after a successful generation is a
// distinct "generated but not sent" outcome, never a loss of the content.
func (e *Emailer) Send(ctx context.Context, to, subject, html string) bool {
	if e.cfg.ResendAPIKey != "" {
		return e.sendResend(ctx, to, subject, html)
	}
	if e.cfg.SMTP.Host != "" && e.cfg.SMTP.Username != "" {
		return e.sendSMTP(to, subject, html)
	}
	logger.Warn("no email provider configured")
	return false
}

// sendResend delivers through the Resend HTTP API.
func (e *Emailer) sendResend(ctx context.Context, to, subject, html string) bool {
	payload, err := json.Marshal(map[string]any{
		"from":    e.cfg.FromEmail,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.resendURL, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.ResendAPIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Error("resend request failed", err, "to", to)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("resend returned non-2xx", "status", resp.StatusCode, "to", to)
		return false
	}
	return true
}

// sendSMTP delivers through plain SMTP with STARTTLS.
func (e *Emailer) sendSMTP(to, subject, html string) bool {
	smtpCfg := e.cfg.SMTP
	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)

	var msg strings.Builder
	msg.WriteString("From: " + e.cfg.FromEmail + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	if err := smtp.SendMail(addr, auth, e.cfg.FromEmail, []string{to}, []byte(msg.String())); err != nil {
		logger.Error("smtp send failed", err, "to", to)
		return false
	}
	return true
}
