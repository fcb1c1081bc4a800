package throttle

import (
	"context"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Recorder é o mínimo que o servidor precisa da janela: registrar uma conexão.
type Recorder interface {
	Record()
}

// RecorderFunc adapta uma função comum a Recorder.
type RecorderFunc func()

func (f RecorderFunc) Record() { f() }

// TrackerServer aceita conexões TCP e registra cada uma exatamente uma vez.
//
// O payload é descartado sem ser interpretado e nada é escrito de volta: o
// servidor mede, não aplica limite, então nenhuma conexão é recusada.
type TrackerServer struct {
	Addr     string
	Recorder Recorder
	Logger   *zap.Logger

	// DrainTimeout limita quanto tempo uma conexão fica aberta esperando o
	// cliente fechar. Zero usa 2s.
	DrainTimeout time.Duration
}

func NewTrackerServer(host string, port int, rec Recorder, logger *zap.Logger) *TrackerServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerServer{Addr: joinHostPort(host, port), Recorder: rec, Logger: logger}
}

// ListenAndServe abre o listener em Addr e chama Serve.
func (s *TrackerServer) ListenAndServe(ctx context.Context) error {
	ln, err := listen(ctx, s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	return ln, nil
}

// Serve roda o loop de accept até o ctx encerrar (retorna nil) ou até um erro
// permanente do listener. Erros temporários fazem backoff como o net/http.
func (s *TrackerServer) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var conns sync.WaitGroup
	defer conns.Wait()

	var closeOnce sync.Once
	closeLn := func() { closeOnce.Do(func() { _ = ln.Close() }) }
	defer closeLn()

	stop := context.AfterFunc(ctx, closeLn)
	defer stop()

	logger.Info("tracker listening", zap.String("addr", ln.Addr().String()))

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if retryableAccept(err) {
				backoff = nextBackoff(backoff)
				logger.Warn("accept error; retrying", zap.Error(err), zap.Duration("backoff", backoff))
				select {
				case <-time.After(backoff):
					continue
				case <-ctx.Done():
					return nil
				}
			}
			return errors.Wrap(err, "accept")
		}
		backoff = 0

		s.Recorder.Record()
		conns.Add(1)
		go func() {
			defer conns.Done()
			s.drain(conn)
		}()
	}
}

// drain espera o cliente fechar antes de fechar do nosso lado; fechar com
// bytes não lidos no buffer faz o kernel mandar RST para o cliente.
func (s *TrackerServer) drain(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	timeout := s.DrainTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, _ = io.Copy(io.Discard, conn)
}

// retryableAccept cobre falta de descritores (EMFILE/ENFILE), que não é
// Timeout, e qualquer erro que o próprio net marque como temporário.
func retryableAccept(err error) bool {
	if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
		return true
	}
	var ne net.Error
	if !errors.As(err, &ne) {
		return false
	}
	//nolint:staticcheck // Temporary é deprecated, mas é o que o net/http ainda usa no Serve.
	return ne.Timeout() || ne.Temporary()
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
