package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	t.Run("activation", func(t *testing.T) {
		msg, err := ActivationMail("ann@example.com", ActivationData{Name: "Ann", ActivationCode: "4821"})
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", msg.To)
		assert.Contains(t, msg.HTML, "4821")
		assert.Contains(t, msg.HTML, "Hello Ann")
	})

	t.Run("escapes user input", func(t *testing.T) {
		msg, err := ReplyMail("ann@example.com", ReplyData{Name: "<script>x</script>", Title: "Intro"})
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "<script>")
	})

	t.Run("order confirmation", func(t *testing.T) {
		msg, err := OrderConfirmationMail("ann@example.com", OrderData{Name: "Ann", ItemName: "Go course", Price: 19.5, OrderID: "abc"})
		require.NoError(t, err)
		assert.Contains(t, msg.HTML, "$19.50")
	})
}

func TestSMTPSender(t *testing.T) {
	sender := NewSMTPSender(SMTPOptions{Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw", From: "bot@example.com"})

	var gotAddr string
	var gotTo []string
	var gotBody string
	sender.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	err := sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "Hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: Hi\r\n")
	assert.Contains(t, gotBody, "Content-Type: text/html")

	sender.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay denied") }
	assert.ErrorContains(t, sender.Send(context.Background(), Message{To: "ann@example.com"}), "relay denied")
}
