package utils

import (
	"log"

	"github.com/wneessen/go-mail"

	"floralys_back_end/internal/config"
)

// Mailer encapsule l'envoi SMTP. Construit une fois dans main et injecté
// dans le notifier — l'échec d'un e-mail ne doit jamais faire échouer
// une commande.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewMailer(cfg config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}
