// Package email implements the gate's delivery channel over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/ginclub-dev/ginclub/backend/internal/service"
	"github.com/ginclub-dev/ginclub/shared/config"
	"github.com/ginclub-dev/ginclub/shared/logger"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

// Channel renders a named template from the gate's payload and sends it over
// SMTP. Which SMTP account is used is deployment configuration, not a
// per-call argument.
type Channel struct {
	config    *config.Email
	auth      smtp.Auth
	templates map[string]messageTemplate
}

var _ service.Delivery = (*Channel)(nil)

func New(config *config.Email) *Channel {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)
	return &Channel{
		config: config,
		auth:   auth,
		templates: map[string]messageTemplate{
			service.TemplateLoginCode: {
				subject: template.Must(template.New("subject").Parse(
					"Your GIN Login Code: {{.code}}")),
				body: template.Must(template.New("body").Parse(
					"Hello {{.to_name}},\n\n" +
						"Your one-time code is {{.code}}. It expires in {{.code_expiry}}.\n\n" +
						"If you did not request this, please ignore this email.\n")),
			},
			service.TemplateBackupCopy: {
				subject: template.Must(template.New("subject").Parse(
					"GIN login code backup copy: {{.code}}")),
				body: template.Must(template.New("body").Parse(
					"Backup: {{.requested_by}} requested a code.\n\n" +
						"Code: {{.code}}. Expires in {{.code_expiry}}.\n")),
			},
		},
	}
}

func (c *Channel) Send(templateID string, payload map[string]string) error {
	t, ok := c.templates[templateID]
	if !ok {
		return fmt.Errorf("unknown template %q", templateID)
	}
	recipient := payload["to_email"]
	if recipient == "" {
		return fmt.Errorf("template %q payload has no to_email", templateID)
	}

	subject, err := render(t.subject, payload)
	if err != nil {
		return err
	}
	body, err := render(t.body, payload)
	if err != nil {
		return err
	}

	msg := c.buildMessage(recipient, subject, body)
	address := fmt.Sprintf("%s:%d", c.config.SMTPServer, c.config.SMTPPort)

	// Port 465 = implicit TLS, otherwise STARTTLS
	if c.config.SMTPPort == 465 {
		return c.sendImplicitTLS(address, recipient, msg)
	}
	return c.sendSTARTTLS(address, recipient, msg)
}

func render(t *template.Template, payload map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func (c *Channel) timeout() time.Duration {
	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

// sendImplicitTLS sends over a connection that is TLS from the start (465).
func (c *Channel) sendImplicitTLS(address, recipient string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: c.config.SMTPServer}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: c.timeout()}, "tcp", address, tlsConfig)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server (implicit TLS)", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, c.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	return c.sendViaClient(client, recipient, msg)
}

// sendSTARTTLS upgrades a plain connection to TLS (587).
func (c *Channel) sendSTARTTLS(address, recipient string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, c.timeout())
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, c.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: c.config.SMTPServer}
	if err = client.StartTLS(tlsConfig); err != nil {
		logger.Log.Error("failed to start TLS", "error", err)
		return err
	}

	return c.sendViaClient(client, recipient, msg)
}

func (c *Channel) sendViaClient(client *smtp.Client, recipient string, msg []byte) error {
	if err := client.Auth(c.auth); err != nil {
		logger.Log.Error("SMTP authentication failed", "error", err)
		return err
	}

	if err := client.Mail(c.config.Username); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}

	if err := client.Rcpt(recipient); err != nil {
		logger.Log.Error("failed to set recipient", "recipient", recipient, "error", err)
		return err
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}

	if _, err = w.Write(msg); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}

	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}

func (c *Channel) messageID() string {
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), c.config.SMTPServer)
}

func (c *Channel) buildMessage(recipient, subject, body string) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", c.config.SenderName)

	date := time.Now().Format(time.RFC1123Z)

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		c.messageID(), date, recipient, encodedSenderName, c.config.Username, encodedSubject, body,
	)
}
