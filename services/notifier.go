package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"visir-watcher/config"
	"visir-watcher/models"
	"visir-watcher/utils"
)

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

// digestTemplate renders the per-run email body: one block per new listing
// in the sorted delta.
var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"dots":  dotThousands,
	"deref": deref,
}).Parse(`<html><body><h2>New properties matching your criteria have been found:</h2>
{{range .}}<div style="margin-bottom: 30px; padding: 15px; border: 1px solid #ddd;">
<h3>{{.Address}}</h3>
<p><strong>Price:</strong> {{.PriceRaw}}</p>
<p><strong>Size:</strong> {{.SizeM2}}</p>
{{if .PricePerM2}}<p><strong>Price per m²:</strong> {{dots .PricePerM2}} kr.</p>
{{end}}<p><strong>Bedrooms:</strong> {{.Bedrooms}}</p>
{{if .HasBalcony}}<p><strong>Balcony:</strong> {{if deref .HasBalcony}}yes{{else}}no{{end}}</p>
{{end}}{{if .HasTerrace}}<p><strong>Terrace:</strong> {{if deref .HasTerrace}}yes{{else}}no{{end}}</p>
{{end}}{{if .ImageURL}}<img src="{{deref .ImageURL}}" alt="Property image" style="max-width: 600px; height: auto; margin: 10px 0;" />
{{end}}<p><a href="{{.Link}}">View Property</a></p>
</div>
{{end}}</body></html>`))

// Notifier delivers the run digest through the SendGrid v3 mail API.
// Delivery failure is reported but never fails the run: by the time the
// notifier fires, the catalog has already been persisted.
type Notifier struct {
	apiKey    string
	fromEmail string
	toEmail   string
	endpoint  string
	client    *http.Client
	logger    *utils.Logger
}

// NewNotifier creates a Notifier from the run configuration.
func NewNotifier(cfg *config.Config, logger *utils.Logger) *Notifier {
	return &Notifier{
		apiKey:    cfg.SendGridAPIKey,
		fromEmail: cfg.FromEmail,
		toEmail:   cfg.ToEmail,
		endpoint:  sendGridURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// Notify renders and sends the digest for a non-empty delta. An empty delta
// sends nothing.
func (n *Notifier) Notify(delta []*models.ListingRecord) error {
	if len(delta) == 0 {
		n.logger.Info("[notify] No new properties — no email sent")
		return nil
	}

	subject := fmt.Sprintf("New Properties Found: %d listings", len(delta))
	body, err := RenderDigest(delta)
	if err != nil {
		return fmt.Errorf("notify: render digest: %w", err)
	}
	return n.Send(subject, body)
}

// Send posts one HTML email. Missing credentials skip delivery with a log
// line rather than an error, matching the rest of the run's "notification
// is best-effort" stance.
func (n *Notifier) Send(subject, htmlBody string) error {
	if n.apiKey == "" || n.fromEmail == "" || n.toEmail == "" {
		n.logger.Warn("[notify] Email skipped — missing SENDGRID_API_KEY, FROM_EMAIL or TO_EMAIL")
		return nil
	}

	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": n.toEmail}}, "subject": subject},
		},
		"from":    map[string]string{"email": n.fromEmail},
		"content": []map[string]string{{"type": "text/html", "value": htmlBody}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notify: sendgrid status %d: %s", resp.StatusCode, detail)
	}

	n.logger.Info("[notify] Email sent to %s (%s)", n.toEmail, subject)
	return nil
}

// RenderDigest builds the HTML body for the given delta.
func RenderDigest(delta []*models.ListingRecord) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, delta); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// deref unwraps the record's optional pointer fields for the template.
func deref(v any) any {
	switch p := v.(type) {
	case *bool:
		if p != nil {
			return *p
		}
		return false
	case *string:
		if p != nil {
			return *p
		}
		return ""
	case *int:
		if p != nil {
			return *p
		}
		return 0
	default:
		return v
	}
}

// dotThousands adapts DotThousands for the template's pointer field.
func dotThousands(n *int) string {
	if n == nil {
		return ""
	}
	return DotThousands(*n)
}

// DotThousands formats an integer with dot thousands separators, the local
// convention for kr amounts (625000 → "625.000").
func DotThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
