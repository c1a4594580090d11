package email

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Registrar <office@college.test>", "asha@college.test", "Fee due", "Please pay by Friday.")
	assert.Equal(t, "From: Registrar <office@college.test>\r\n"+
		"To: asha@college.test\r\n"+
		"Subject: Fee due\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"Please pay by Friday.", msg)
}

func TestSendWithoutCredentialsIsNoop(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.college.test", Port: 587}, zerolog.Nop())
	assert.False(t, s.Configured())
	assert.NoError(t, s.Send(context.Background(), "asha@college.test", "Hi", "Body"))
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("asha@college.test"))
	assert.False(t, IsAddress("STD-0001"))
	assert.False(t, IsAddress("@college.test"))
	assert.False(t, IsAddress("asha@"))
	assert.False(t, IsAddress("a b@college.test"))
}
