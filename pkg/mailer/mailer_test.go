package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"picture-wall/pkg/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MailConfig
		want    interface{}
		wantErr bool
	}{
		{name: "log", cfg: config.MailConfig{Provider: "log"}, want: LogMailer{}},
		{name: "smtp", cfg: config.MailConfig{Provider: "smtp"}, want: &SMTPMailer{}},
		{name: "resend", cfg: config.MailConfig{Provider: "resend", ResendAPIKey: "k"}, want: &ResendMailer{}},
		{name: "resend without key", cfg: config.MailConfig{Provider: "resend"}, wantErr: true},
		{name: "unknown", cfg: config.MailConfig{Provider: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}

func TestResendMailer_Send(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := &ResendMailer{
		cfg:      config.MailConfig{From: "noreply@test", ResendAPIKey: "secret"},
		endpoint: srv.URL,
		client:   srv.Client(),
	}
	require.NoError(t, m.Send("a@test", "hello", "<p>x</p>"))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, []string{"a@test"}, got.To)
	assert.Equal(t, "hello", got.Subject)
}

func TestResendMailer_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := &ResendMailer{cfg: config.MailConfig{ResendAPIKey: "k"}, endpoint: srv.URL, client: srv.Client()}
	assert.Error(t, m.Send("a@test", "s", "b"))
}

func TestOTPEmail(t *testing.T) {
	subject, html := OTPEmail("register", "123456", time.Minute)
	assert.Contains(t, subject, "verification")
	assert.Contains(t, html, "123456")

	subject, _ = OTPEmail("reset", "654321", time.Minute)
	assert.Contains(t, subject, "reset")
}
