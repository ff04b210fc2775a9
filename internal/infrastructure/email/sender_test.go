package email

import (
	"context"
	"strings"
	"testing"

	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSender_DisabledWithoutHost(t *testing.T) {
	sender := NewSender(config.SMTPConfig{}, zap.NewNop())
	assert.IsType(t, &LogSender{}, sender)

	sender = NewSender(config.SMTPConfig{Host: "smtp.example.test", Port: 587}, zap.NewNop())
	assert.IsType(t, &SMTPSender{}, sender)
}

func TestBuildEmail(t *testing.T) {
	cfg := config.SMTPConfig{From: "shop@example.test", FromName: "Corner Shop"}

	e, err := buildEmail(cfg, Message{
		To:      []string{" amina@example.test ", ""},
		Subject: "Your order has shipped",
		HTML:    "<p>On its way</p>",
		Attachments: []Attachment{
			{Filename: "receipt.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
			{Filename: "notes.bin", Data: []byte{1, 2}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"amina@example.test"}, e.To)
	assert.Equal(t, `"Corner Shop" <shop@example.test>`, e.From)
	assert.Equal(t, "<p>On its way</p>", string(e.HTML))
	require.Len(t, e.Attachments, 2)
	assert.Equal(t, "receipt.pdf", e.Attachments[0].Filename)

	raw, err := e.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "Subject: Your order has shipped"))
	assert.True(t, strings.Contains(string(raw), "application/pdf"))
	assert.True(t, strings.Contains(string(raw), "application/octet-stream"))
}

func TestBuildEmail_Recipients(t *testing.T) {
	_, err := buildEmail(config.SMTPConfig{From: "shop@example.test"}, Message{To: []string{"  "}})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = buildEmail(config.SMTPConfig{From: "shop@example.test"}, Message{To: []string{"not-an-address"}})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	err := sender.Send(context.Background(), Message{
		To:          []string{"amina@example.test"},
		Subject:     "Approved",
		Attachments: []Attachment{{Filename: "receipt.pdf"}},
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("email not sent, SMTP disabled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Approved", entries[0].ContextMap()["subject"])

	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipients)
}
