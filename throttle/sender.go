package throttle

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// TCPSender envia uma unidade de trabalho: abre a conexão, escreve o número de
// sequência em decimal e fecha. Nada é lido de volta.
type TCPSender struct {
	Addr   string
	Dialer net.Dialer
}

func NewTCPSender(host string, port int) *TCPSender {
	return &TCPSender{Addr: joinHostPort(host, port)}
}

// Send implementa domain.Sender.
func (s *TCPSender) Send(ctx context.Context, seq uint64) error {
	conn, err := s.Dialer.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return errors.Wrapf(err, "connect %s", s.Addr)
	}
	defer func() { _ = conn.Close() }()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(dl)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	}
	if _, err := conn.Write(formatSeq(seq)); err != nil {
		return errors.Wrapf(err, "write seq %d", seq)
	}
	return nil
}
