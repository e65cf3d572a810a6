package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Mailer 发送 HTML 邮件
type Mailer interface {
	Send(to, subject, html string) error
}

// New 根据配置选择邮件发送方式
func New(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "smtp":
		return &SMTPMailer{cfg: cfg}, nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend provider requires resend_api_key")
		}
		return &ResendMailer{cfg: cfg, endpoint: resendEndpoint, client: &http.Client{Timeout: 10 * time.Second}}, nil
	case "log", "":
		return LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	msg := "From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type ResendMailer struct {
	cfg      config.MailConfig
	endpoint string
	client   *http.Client
}

func (m *ResendMailer) Send(to, subject, html string) error {
	body, err := json.Marshal(resendRequest{
		From:    m.cfg.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.ResendAPIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}

// LogMailer 仅记录日志，用于开发和测试环境
type LogMailer struct{}

func (LogMailer) Send(to, subject, html string) error {
	logger.L.Info("Email (log provider)", zap.String("to", to), zap.String("subject", subject), zap.String("body", html))
	return nil
}

// OTPEmail 生成验证码邮件内容
func OTPEmail(purpose, otp string, ttl time.Duration) (subject, html string) {
	subject = "Your Picture Wall verification code"
	if purpose == "reset" {
		subject = "Your Picture Wall password reset code"
	}
	html = fmt.Sprintf(
		`<p>Your code is <strong>%s</strong>.</p>`+
			`<p>It expires in %s.</p>`,
		otp, ttl.String(),
	)
	return subject, html
}
