// Package services содержит отправку писем по сообщениям очереди биллинга.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cookieflix/cookieflix-backend/internal/lib/sl"
	smtptransport "github.com/cookieflix/cookieflix-backend/internal/lib/smtp"
	"github.com/cookieflix/cookieflix-backend/internal/models"
)

type SenderService struct {
	transport  Transport
	adminEmail string
	log        *slog.Logger
}

type Transport interface {
	Connect() (smtptransport.Client, error)
	GetSMTPUser() string
}

// NewSenderService создает новый экземпляр SenderService. Письма о неудачной
// оплате дублируются на adminEmail, если адрес задан.
func NewSenderService(log *slog.Logger, transport Transport, adminEmail string) *SenderService {
	return &SenderService{
		transport:  transport,
		adminEmail: adminEmail,
		log:        log,
	}
}

// SendBillingNotification разбирает сообщение очереди биллинга и отправляет
// пользователю письмо, соответствующее типу уведомления.
func (s *SenderService) SendBillingNotification(body []byte) error {
	var message models.BillingNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	name := message.FullName
	if name == "" {
		name = message.Email
	}

	recipients := []string{message.Email}

	var subject, bodyText string
	switch message.Type {
	case models.NotificationPaymentFailed:
		subject = "Не удалось списать оплату подписки Cookieflix"
		bodyText = fmt.Sprintf("Здравствуйте, %s!\n\nМы не смогли списать оплату вашей подписки Cookieflix.\n\nПожалуйста, обновите платёжные данные в личном кабинете, иначе подписка будет приостановлена.",
			name)
		if s.adminEmail != "" {
			recipients = append(recipients, s.adminEmail)
		}
	case models.NotificationSubscriptionEnded:
		subject = "Ваша подписка Cookieflix приостановлена"
		bodyText = fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка Cookieflix приостановлена.\n\nЧтобы продолжить получать наборы и голосовать за дизайны, оформите подписку заново.",
			name)
	case models.NotificationSubscriptionRenewed:
		periodEnd, _ := message.Payload["period_end"].(string)
		subject = "Подписка Cookieflix продлена"
		bodyText = fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка Cookieflix успешно продлена до %s.\n\nСпасибо, что остаётесь с нами!",
			name, periodEnd)
	default:
		s.log.Warn("unknown notification type, skipping", slog.String("type", message.Type))
		return nil
	}

	return s.sendEmail(recipients, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
