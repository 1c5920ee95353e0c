package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"verimail/internal/config"
	"verimail/internal/models"
	"verimail/internal/utils"
)

// ErrMailDispatch — транспортная ошибка SMTP (соединение, auth, TLS).
// Повторов нет: отправка однократная, в рамках запроса.
var ErrMailDispatch = errors.New("mail dispatch failed")

type EmailService interface {
	SendVerificationEmail(email, projectName, token, baseURL string, project *models.Project) error
	SendCustomEmail(msg *models.OutboundMessage, project *models.Project) error
}

type emailService struct {
	profiles      map[string]config.SMTPProfile
	defaultSender string
	defaultUser   string
	defaultPass   string

	// подменяется в тестах
	send func(d *gomail.Dialer, m *gomail.Message) error
}

func NewEmailService(cfg config.MailConfig) EmailService {
	return &emailService{
		profiles:      cfg.Profiles,
		defaultSender: cfg.DefaultSender,
		defaultUser:   cfg.Username,
		defaultPass:   cfg.Password,
		send: func(d *gomail.Dialer, m *gomail.Message) error {
			return d.DialAndSend(m)
		},
	}
}

// profileFor — транспортный профиль по домену отправителя. Неизвестный
// или отсутствующий домен всегда уходит в "default", ошибок нет.
func (s *emailService) profileFor(sender string) config.SMTPProfile {
	domain := utils.EmailDomain(sender)
	if p, ok := s.profiles[domain]; ok {
		return p
	}
	return s.profiles["default"]
}

func (s *emailService) SendVerificationEmail(email, projectName, token, baseURL string, project *models.Project) error {
	sender := s.defaultSender
	if project != nil && project.MailUsername != "" {
		sender = project.MailUsername
	}
	verificationURL := strings.TrimRight(baseURL, "/") + "/api/verify/" + token

	m := gomail.NewMessage()
	m.SetHeader("From", sender)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Confirme seu Email")
	m.SetBody("text/plain", fmt.Sprintf(
		"Para confirmar seu email para %s, clique no link abaixo:\n%s\n\nSe você não solicitou este email, ignore esta mensagem.",
		projectName, verificationURL,
	))
	m.AddAlternative("text/html", fmt.Sprintf(`
		<h1>Confirme seu Email</h1>
		<p>Para confirmar seu email para %s, clique no link abaixo:</p>
		<p><a href="%s">Clique aqui para verificar seu email</a></p>
		<p>Se você não solicitou este email, ignore esta mensagem.</p>
	`, projectName, verificationURL))

	return s.dispatch(m, sender, project)
}

func (s *emailService) SendCustomEmail(msg *models.OutboundMessage, project *models.Project) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.Sender)
	m.SetHeader("To", msg.Recipients...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = msg.Sender
	}
	m.SetHeader("Reply-To", replyTo)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if domain := utils.EmailDomain(msg.Sender); domain != "" {
		m.SetHeader("List-Unsubscribe", "<mailto:unsubscribe@"+domain+">")
	}

	for _, att := range msg.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		m.Attach(att.Filename, settings...)
	}

	return s.dispatch(m, msg.Sender, project)
}

// dispatch — один вызов, один dialer: транспортный профиль и учётки
// собираются на каждую отправку заново, общего мутируемого состояния нет.
func (s *emailService) dispatch(m *gomail.Message, sender string, project *models.Project) error {
	profile := s.profileFor(sender)

	user, pass := s.defaultUser, s.defaultPass
	if project.HasMailCredentials() {
		user, pass = project.MailUsername, project.MailPassword
	}

	d := gomail.NewDialer(profile.Host, profile.Port, user, pass)
	d.SSL = profile.UseTLS && profile.Port == 465

	if err := s.send(d, m); err != nil {
		log.Printf("[mail][dispatch] send via %s:%d as %q failed: %v", profile.Host, profile.Port, user, err)
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}
	return nil
}
