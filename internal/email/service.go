package email

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a rendered message
type Sender interface {
	Send(to, subject, body string) error
}

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

func (s *Service) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

// OrderConfirmationSubject is the subject line for a newly placed order
func OrderConfirmationSubject(orderID string) string {
	return fmt.Sprintf("Blackshot order %s received", orderID)
}

// StatusUpdateSubject is the subject line for a status change
func StatusUpdateSubject(orderID, status string) string {
	return fmt.Sprintf("Blackshot order %s is now %s", orderID, status)
}
