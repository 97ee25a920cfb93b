package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/joseph-ayodele/estatehub/constants"
)

// VerificationEvent announces a verification status change.
type VerificationEvent struct {
	ProfileID  uuid.UUID                    `json:"profile_id"`
	UserID     string                       `json:"user_id"`
	Status     constants.VerificationStatus `json:"status"`
	ReviewerID string                       `json:"reviewer_id,omitempty"`
	Note       string                       `json:"note,omitempty"`
	OccurredAt time.Time                    `json:"occurred_at"`
}

// Publisher emits verification events.
type Publisher interface {
	PublishVerification(ctx context.Context, ev VerificationEvent) error
}

// Subject returns "<prefix>.<status>" in lower case.
func Subject(prefix string, status constants.VerificationStatus) string {
	return strings.TrimSuffix(prefix, ".") + "." + strings.ToLower(string(status))
}

// NATSPublisher publishes events as JSON on core NATS.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// ConnectNATS dials url and returns a publisher using subject prefix.
func ConnectNATS(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("estatehubd"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATSPublisher(conn, prefix, logger), nil
}

func NewNATSPublisher(conn *nats.Conn, prefix string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

func (p *NATSPublisher) PublishVerification(_ context.Context, ev VerificationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := nats.NewMsg(Subject(p.prefix, ev.Status))
	msg.Data = data
	msg.Header.Set("Profile-Id", ev.ProfileID.String())
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	p.logger.Debug("verification event published", "subject", msg.Subject, "profile_id", ev.ProfileID)
	return nil
}

// Close drains pending publishes and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher drops events. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishVerification(context.Context, VerificationEvent) error { return nil }
