package sender

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"gopkg.in/gomail.v2"
)

const htmlContentType = "text/html"

var log = logger.GetOrCreate("sender")

// ArgsSMTPSender defines the SMTP sender arguments
type ArgsSMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender delivering the emails through the configured SMTP server
func NewSMTPSender(args ArgsSMTPSender) (*smtpSender, error) {
	if len(args.Host) == 0 {
		return nil, errors.New("empty SMTP host")
	}
	if args.Port <= 0 {
		return nil, fmt.Errorf("invalid SMTP port %d", args.Port)
	}
	if len(args.From) == 0 {
		return nil, errors.New("empty from address")
	}

	return &smtpSender{
		dialer: gomail.NewDialer(args.Host, args.Port, args.Username, args.Password),
		from:   args.From,
	}, nil
}

// Send delivers the email
func (s *smtpSender) Send(ctx context.Context, email *common.Email) error {
	if email == nil {
		return errors.New("nil email")
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	err = s.dialer.DialAndSend(NewMessage(s.from, email))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Debug("email sent", "subject", email.Subject, "recipients", len(email.Recipients))

	return nil
}

// NewMessage converts the email into a MIME message with its images embedded inline
func NewMessage(from string, email *common.Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email.Recipients...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody(htmlContentType, email.Body)

	for _, attachment := range email.Attachments {
		data := attachment.Data
		header := map[string][]string{
			"Content-ID": {"<" + attachment.ContentID + ">"},
		}
		if len(attachment.ContentType) > 0 {
			header["Content-Type"] = []string{attachment.ContentType}
		}

		m.Embed(attachment.FileName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(header),
		)
	}

	return m
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *smtpSender) IsInterfaceNil() bool {
	return s == nil
}
