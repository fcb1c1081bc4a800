package throttle

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"request-throttler/throttle/application"
	"request-throttler/throttle/domain"
	"request-throttler/throttle/infra"
)

type ClientOptions struct {
	Host     string
	Port     int
	Rate     float64
	Strategy domain.Strategy

	SendTimeout  time.Duration
	MaxInFlight  int
	InFlightWait time.Duration

	Stats  domain.StatsStore
	Logger *zap.Logger
	Clock  domain.Clock
}

// NewClient monta limiter + TCPSender + Dispatcher. Taxa inválida falha aqui,
// antes de qualquer envio.
func NewClient(opts ClientOptions) (*application.Dispatcher, error) {
	if opts.Clock == nil {
		opts.Clock = infra.SystemClock{}
	}
	limiter, err := infra.NewLimiter(opts.Strategy, opts.Rate, opts.Clock)
	if err != nil {
		return nil, err
	}

	dopts := []application.DispatcherOption{
		application.WithDispatchLogger(opts.Logger),
		application.WithDispatchStats(opts.Stats),
		application.WithSendTimeout(opts.SendTimeout),
	}
	if opts.MaxInFlight > 0 {
		dopts = append(dopts, application.WithInFlightLimit(infra.NewSemaphorePool(opts.MaxInFlight), opts.InFlightWait))
	}

	return application.NewDispatcher(limiter, NewTCPSender(opts.Host, opts.Port), dopts...), nil
}

type TrackerOptions struct {
	Host           string
	Port           int
	Horizon        time.Duration
	ReportInterval time.Duration

	Stats  domain.StatsStore
	Logger *zap.Logger
}

// Tracker junta servidor, janela e reporter do lado que mede.
type Tracker struct {
	Window   *infra.RequestWindow
	Server   *TrackerServer
	Reporter application.RateReporter
}

func NewTracker(opts TrackerOptions) *Tracker {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	w := infra.NewRequestWindow(infra.WithHorizon(opts.Horizon))
	return &Tracker{
		Window: w,
		Server: NewTrackerServer(opts.Host, opts.Port, RecorderFunc(func() { w.Record() }), opts.Logger),
		Reporter: application.RateReporter{
			Window:   w,
			Interval: opts.ReportInterval,
			Logger:   opts.Logger,
			Stats:    opts.Stats,
		},
	}
}

// Run abre o listener em host:port e chama Serve.
func (t *Tracker) Run(ctx context.Context) error {
	ln, err := listen(ctx, t.Server.Addr)
	if err != nil {
		return err
	}
	return t.Serve(ctx, ln)
}

// Serve executa servidor e reporter até o ctx encerrar (retorna nil). Falha
// do listener derruba os dois.
func (t *Tracker) Serve(ctx context.Context, ln net.Listener) error {
	defer t.Window.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := t.Server.Serve(gctx, ln); err != nil {
			return err
		}
		return gctx.Err()
	})
	g.Go(func() error { return t.Reporter.Run(gctx) })

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
