// Package notify implements the Pushover notification delivery channel.
//
// A notification is one message for one recipient, with an optional PNG
// attachment. The Pushover messages endpoint accepts multipart/form-data
// with the credential fields inline and the image as a file part named
// "attachment".
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"

	"rainalert/internal/types"
)

// attachmentFilename is the name declared for the file part; Pushover shows
// it in the message detail view.
const attachmentFilename = "image.png"

// attachmentMIME is the declared content type of the icon attachment.
const attachmentMIME = "image/png"

// maxErrorBodyRead limits how much of an upstream error body is included
// in error messages.
const maxErrorBodyRead = 4096

// Notification is the single outbound message of a run.
type Notification struct {
	Message string
	// AttachmentPath is the local PNG to attach; empty means no attachment.
	AttachmentPath string
}

// Pushover delivers notifications via the Pushover messages API.
type Pushover struct {
	baseURL    string
	apiKey     types.SecretString
	userKey    types.SecretString
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPushover creates a Pushover channel. The httpClient is caller-supplied
// for timeout policy and test injection.
func NewPushover(baseURL string, apiKey, userKey types.SecretString, httpClient *http.Client, logger *slog.Logger) *Pushover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pushover{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userKey:    userKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send posts the notification. Any transport failure or non-2xx status is
// fatal to the run and is returned as an AppError with ErrCodeUpstreamNotify.
func (p *Pushover) Send(ctx context.Context, n Notification) error {
	body, contentType, err := p.encode(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, body)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create notification request", err)
	}
	req.Header.Set("Content-Type", contentType)

	p.logger.Debug("sending notification",
		"message", n.Message,
		"has_attachment", n.AttachmentPath != "",
	)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamNotify, "notification request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
		return types.NewAppError(
			types.ErrCodeUpstreamNotify,
			fmt.Sprintf("notification endpoint returned %d: %s", resp.StatusCode, string(respBody)),
			nil,
		)
	}

	return nil
}

// encode builds the multipart form body: token, user and message fields,
// plus attachment_type and the file part when an attachment is present.
func (p *Pushover) encode(n Notification) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"token":   p.apiKey.Unmask(),
		"user":    p.userKey.Unmask(),
		"message": n.Message,
	}
	if n.AttachmentPath != "" {
		fields["attachment_type"] = attachmentMIME
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode notification field", err)
		}
	}

	if n.AttachmentPath != "" {
		if err := p.attachFile(w, n.AttachmentPath); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to finalize notification body", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// attachFile streams the icon file into a multipart file part with an
// explicit image/png part content type.
func (p *Pushover) attachFile(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to open attachment", err)
	}
	defer f.Close()

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="attachment"; filename=%q`, attachmentFilename))
	header.Set("Content-Type", attachmentMIME)

	part, err := w.CreatePart(header)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create attachment part", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to write attachment", err)
	}

	return nil
}
