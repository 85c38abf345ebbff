// FILE: companion/internal/mapping/push.go
package mapping

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultAddress is where the layer listens for live mapping updates.
const DefaultAddress = "localhost:10001"

// Push sends each update line to a running layer as one UDP datagram.
func Push(ctx context.Context, address string, m *Mapping, logger *logrus.Logger) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return fmt.Errorf("failed to reach layer at %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	start := time.Now()
	updates := m.Updates()
	for _, line := range updates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			return fmt.Errorf("failed to send %q: %w", line, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"address":  address,
		"lines":    len(updates),
		"duration": time.Since(start),
	}).Debug("Mapping pushed")
	return nil
}
