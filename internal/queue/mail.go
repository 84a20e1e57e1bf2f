package queue

import (
    "context"
    "fmt"
    "strings"

    "gopkg.in/gomail.v2"

    "github.com/iliyamo/hotel-room-reservation/internal/config"
)

// SMTPMailer sends plain-text notification mails through an SMTP relay.
type SMTPMailer struct {
    from   string
    dialer *gomail.Dialer
}

// NewSMTPMailer returns nil when cfg.Host is empty so callers can pass the
// result straight to NewNotificationHandler.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
    if cfg.Host == "" {
        return nil
    }
    return &SMTPMailer{
        from:   cfg.From,
        dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
    }
}

// Send implements Mailer.  gomail has no context support; ctx is accepted
// for the interface only.
func (m *SMTPMailer) Send(_ context.Context, ev ReservationEvent) error {
    msg := BuildMessage(m.from, ev)
    if err := m.dialer.DialAndSend(msg); err != nil {
        return fmt.Errorf("smtp send to %s: %w", ev.CustomerEmail, err)
    }
    return nil
}

// BuildMessage renders the mail for ev.
func BuildMessage(from string, ev ReservationEvent) *gomail.Message {
    subject, body := mailContent(ev)
    msg := gomail.NewMessage()
    msg.SetHeader("From", from)
    msg.SetHeader("To", ev.CustomerEmail)
    msg.SetHeader("Subject", subject)
    msg.SetBody("text/plain", body)
    return msg
}

func mailContent(ev ReservationEvent) (string, string) {
    name := ev.CustomerName
    if strings.TrimSpace(name) == "" {
        name = "guest"
    }
    stay := fmt.Sprintf("from %s to %s (%d nights)", ev.CheckIn, ev.CheckOut, ev.Nights)

    switch ev.Type {
    case EventReservationCreated:
        return fmt.Sprintf("Reservation #%d received", ev.ReservationID),
            fmt.Sprintf("Hi %s,\n\nWe received your reservation %s. Total: %s.\nIt will be confirmed once payment is received.\n", name, stay, ev.TotalPrice)
    case EventReservationConfirmed:
        return fmt.Sprintf("Reservation #%d confirmed", ev.ReservationID),
            fmt.Sprintf("Hi %s,\n\nYour reservation %s is confirmed.\n", name, stay)
    case EventReservationCancelled:
        reason := ""
        if ev.Reason == "payment_timeout" {
            reason = " because payment was not received in time"
        }
        return "Reservation Cancelled",
            fmt.Sprintf("Hi %s,\n\nYour reservation %s has been cancelled%s.\n\nWe hope to host you another time!\n", name, stay, reason)
    case EventReservationCheckedIn:
        return "Welcome", fmt.Sprintf("Hi %s,\n\nYou are checked in. Enjoy your stay!\n", name)
    case EventReservationCheckedOut:
        return "Thank you for staying with us", fmt.Sprintf("Hi %s,\n\nYou checked out on %s. Safe travels!\n", name, ev.CheckOut)
    }
    return fmt.Sprintf("Reservation #%d update", ev.ReservationID),
        fmt.Sprintf("Hi %s,\n\nYour reservation is now %s.\n", name, ev.Status)
}
