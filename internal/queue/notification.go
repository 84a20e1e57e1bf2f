package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "sync"

    "go.uber.org/zap"
)

// Mailer delivers a reservation event to the customer.
type Mailer interface {
    Send(ctx context.Context, ev ReservationEvent) error
}

// NotificationHandler appends every reservation event to
// <dir>/reservation.log as one human-friendly line and, when a Mailer is
// configured and the event carries an address, mails the customer.
type NotificationHandler struct {
    dir    string
    mailer Mailer
    logger *zap.Logger
    mu     sync.Mutex
}

// NewNotificationHandler returns a handler writing under dir.  mailer may be nil.
func NewNotificationHandler(dir string, mailer Mailer, logger *zap.Logger) *NotificationHandler {
    return &NotificationHandler{dir: dir, mailer: mailer, logger: logger}
}

// Handle implements Handler.  A mail failure is logged but does not reject
// the message: the log line is already written.
func (h *NotificationHandler) Handle(ctx context.Context, body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ReservationID == 0 || ev.Type == "" {
        return fmt.Errorf("malformed reservation event %q", ev.ID)
    }
    if err := h.appendLine(FormatEvent(ev)); err != nil {
        return err
    }
    if h.mailer != nil && ev.CustomerEmail != "" {
        if err := h.mailer.Send(ctx, ev); err != nil {
            h.logger.Warn("notification mail failed",
                zap.Uint64("reservation_id", ev.ReservationID),
                zap.String("type", string(ev.Type)),
                zap.Error(err),
            )
        }
    }
    return nil
}

func (h *NotificationHandler) appendLine(line string) error {
    h.mu.Lock()
    defer h.mu.Unlock()
    if err := os.MkdirAll(h.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", h.dir, err)
    }
    f, err := os.OpenFile(filepath.Join(h.dir, "reservation.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders ev as a single log line terminated by a newline.
func FormatEvent(ev ReservationEvent) string {
    line := fmt.Sprintf("[%s] %s | reservation_id=%d | customer_id=%d | room_id=%d | stay=%s..%s | nights=%d | total=%s | status=%s",
        ev.OccurredAt, ev.Type, ev.ReservationID, ev.CustomerID, ev.RoomID, ev.CheckIn, ev.CheckOut, ev.Nights, ev.TotalPrice, ev.Status)
    if ev.Reason != "" {
        line += " | reason=" + ev.Reason
    }
    return line + "\n"
}
