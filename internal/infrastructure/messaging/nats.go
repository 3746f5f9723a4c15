// Package messaging forwards domain events to NATS.
package messaging

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Connect dials NATS with reconnect handling that reports through logger.
// The connection keeps reconnecting forever; callers Drain it on shutdown.
func Connect(cfg config.MessagingConfig, logger *zap.Logger) (*nats.Conn, error) {
	name := cfg.Name
	if name == "" {
		name = "backcontent"
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	logger.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()), zap.String("name", name))
	return conn, nil
}
