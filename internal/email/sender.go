package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UnreadReminder is the content of an unread-message reminder.
type UnreadReminder struct {
	Group    bool
	From     string
	Text     string
	ChatLink string
	FileLink string
}

func (r UnreadReminder) Subject() string {
	if r.Group {
		return "Unread messages in group"
	}
	return "Unread message"
}

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, username, password, from string) *Sender {
	dialer := gomail.NewDialer(host, port, username, password)
	return &Sender{
		dialer: dialer,
		from:   from,
	}
}

func (s *Sender) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *Sender) SendUnreadReminder(to string, reminder UnreadReminder) error {
	body, err := RenderUnreadReminder(reminder)
	if err != nil {
		return err
	}
	if err := s.sendEmail(to, reminder.Subject(), body); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", to, err)
	}
	return nil
}

// RenderUnreadReminder renders the reminder body. Message text is HTML
// escaped.
func RenderUnreadReminder(reminder UnreadReminder) (string, error) {
	return parseTemplate("unread_reminder.html", reminder)
}

func parseTemplate(templateFileName string, data interface{}) (string, error) {
	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, templateFileName, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateFileName, err)
	}
	return buf.String(), nil
}
