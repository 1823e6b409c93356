package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// TopupNotice carries the fields shown in the review channel when a user
// uploads a payment slip.
type TopupNotice struct {
	UserID      uint64 // Internal user ID.
	DiscordID   string // User's Discord ID, mentioned in the embed.
	DisplayName string // Global name or username.
	Amount      int64  // Requested credit amount.
	SlipName    string // Attachment file name.
	SlipData    []byte // Slip image bytes.
	ContentType string // Slip MIME type.
}

// Notifier posts topup notices to a Discord webhook. Delivery is
// best-effort: failures are logged and never fail the triggering request.
type Notifier struct {
	webhookURL  string
	adminRoleID string
	client      *http.Client
}

// NewNotifier constructs a Notifier. Returns nil when no webhook URL is
// configured; callers treat a nil notifier as "notifications disabled".
func NewNotifier(webhookURL, adminRoleID string) *Notifier {
	if webhookURL == "" {
		return nil
	}
	return &Notifier{
		webhookURL:  webhookURL,
		adminRoleID: adminRoleID,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyTopup sends the notice with the slip image attached. Errors are
// logged at warn level and swallowed.
func (n *Notifier) NotifyTopup(ctx context.Context, notice TopupNotice) {
	if n == nil {
		return
	}
	if err := n.send(ctx, notice); err != nil {
		log.WithError(err).Warn("topup webhook notification failed")
	}
}

func (n *Notifier) send(ctx context.Context, notice TopupNotice) error {
	embed := map[string]any{
		"title": "💰 New topup request",
		"color": 0x5865F2,
		"fields": []map[string]any{
			{"name": "👤 User", "value": fmt.Sprintf("%s\n<@%s>", notice.DisplayName, notice.DiscordID), "inline": true},
			{"name": "💵 Amount", "value": fmt.Sprintf("฿%d", notice.Amount), "inline": true},
			{"name": "🆔 User ID", "value": fmt.Sprintf("%d", notice.UserID), "inline": true},
			{"name": "📋 Discord ID", "value": notice.DiscordID, "inline": true},
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"footer":    map[string]any{"text": "Topup Request"},
	}
	payload := map[string]any{"embeds": []any{embed}}
	if n.adminRoleID != "" {
		payload["content"] = fmt.Sprintf("<@&%s>", n.adminRoleID)
	}
	payloadJSON, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return errMarshal
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if errField := writer.WriteField("payload_json", string(payloadJSON)); errField != nil {
		return errField
	}
	if len(notice.SlipData) > 0 {
		part, errPart := writer.CreateFormFile("files[0]", notice.SlipName)
		if errPart != nil {
			return errPart
		}
		if _, errWrite := part.Write(notice.SlipData); errWrite != nil {
			return errWrite
		}
	}
	if errClose := writer.Close(); errClose != nil {
		return errClose
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, &body)
	if errReq != nil {
		return errReq
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, errDo := n.client.Do(req)
	if errDo != nil {
		return errDo
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: webhook status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
