package throttle

import (
	"net"
	"strconv"
)

// formatSeq gera o payload: o número de sequência em decimal, sem terminador.
func formatSeq(seq uint64) []byte { return strconv.AppendUint(nil, seq, 10) }

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
