// Package notification delivers best effort email about task changes.
// Delivery never blocks or fails a request: messages go through a
// bounded queue and a single background worker, and anything the
// worker cannot send is counted and discarded.
package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskmanager/pkg/config"
	"taskmanager/pkg/logging"
	"taskmanager/pkg/telemetry"
)

const (
	queueSize   = 64
	dialTimeout = 10 * time.Second
)

type message struct {
	recipient string
	subject   string
	body      string
}

type Mailer struct {
	cfg     config.SMTPConfig
	logger  *logging.LokiLogger
	metrics *telemetry.AppMetrics
	queue   chan message
}

func NewMailer(cfg config.SMTPConfig, logger *logging.LokiLogger, metrics *telemetry.AppMetrics) *Mailer {
	return &Mailer{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan message, queueSize),
	}
}

// Start runs the delivery worker until ctx is cancelled.
func (m *Mailer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-m.queue:
				if err := m.send(msg); err != nil {
					if m.metrics != nil {
						m.metrics.RecordNotificationFailure()
					}

					if m.logger != nil {
						m.logger.ErrorWithTrace(ctx, "notification delivery failed",
							zap.String("recipient", msg.recipient),
							zap.String("subject", msg.subject),
							zap.Error(err),
						)
					}
				}
			}
		}
	}()
}

// Notify enqueues a message without blocking. When the queue is full
// the message is dropped and counted.
func (m *Mailer) Notify(recipient, subject, body string) {
	if m.cfg.Host == "" || recipient == "" {
		return
	}

	select {
	case m.queue <- message{recipient: recipient, subject: subject, body: body}:
	default:
		if m.metrics != nil {
			m.metrics.RecordNotificationDropped()
		}
	}
}

func (m *Mailer) send(msg message) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)

	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)

	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}

	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.cfg.User != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}

	if err := client.Rcpt(msg.recipient); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	writer, err := client.Data()

	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	var payload strings.Builder

	payload.WriteString("From: " + m.cfg.From + "\r\n")
	payload.WriteString("To: " + msg.recipient + "\r\n")
	payload.WriteString("Subject: " + msg.subject + "\r\n")
	payload.WriteString("MIME-Version: 1.0\r\n")
	payload.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	payload.WriteString("\r\n")
	payload.WriteString(msg.body)

	if _, err := writer.Write([]byte(payload.String())); err != nil {
		writer.Close()
		return fmt.Errorf("write body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
