package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type ActivationData struct {
	Name           string
	ActivationCode string
}

type ReplyData struct {
	Name  string
	Title string
}

type OrderData struct {
	Name     string
	ItemName string
	Price    float64
	OrderID  string
	Date     string
}

func ActivationMail(to string, data ActivationData) (Message, error) {
	return build(to, "Activate your account", "activation-mail.html", data)
}

func ReplyMail(to string, data ReplyData) (Message, error) {
	return build(to, "New reply on your question", "question-reply.html", data)
}

func OrderConfirmationMail(to string, data OrderData) (Message, error) {
	return build(to, "Order confirmation", "order-confirmation.html", data)
}

func build(to, subject, name string, data any) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}

	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
