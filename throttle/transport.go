package throttle

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"throttle-gateway/throttle/application"
	"throttle-gateway/throttle/domain"
	"throttle-gateway/throttle/infra"

	"github.com/rs/zerolog"
)

// ErrMaxWait indica que o slot reservado caiu além de TransportOptions.MaxWait.
var ErrMaxWait = errors.New("throttle: slot beyond max wait")

// ErrNoCapacity indica que não houve vaga de MaxInFlight dentro de InFlightTimeout.
var ErrNoCapacity = domain.ErrNoCapacity

// WaitError carrega quanto faltava para o slot abandonado.
type WaitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("throttle: slot for %q is %s away", e.Key, e.RetryAfter)
}

func (e *WaitError) Is(target error) bool { return target == ErrMaxWait }

type TransportOptions struct {
	// Base é o RoundTripper real. Padrão: http.DefaultTransport.
	Base http.RoundTripper

	// Schedule é a agenda única (teto agregado) de todas as chamadas.
	// Se nil, usa Store + KeyFn (uma agenda por chave).
	Schedule domain.Schedule
	Store    domain.ScheduleStore
	KeyFn    KeyFunc

	MaxWait time.Duration

	// MaxInFlight > 0 limita chamadas simultâneas (vaga devolvida ao fechar o body).
	MaxInFlight     int
	InFlightTimeout time.Duration

	Stats  domain.StatsStore
	Logger *zerolog.Logger
}

type singleStore struct{ sched domain.Schedule }

func (s singleStore) Get(domain.Key) domain.Schedule { return s.sched }

// Transport espera um slot antes de cada chamada de saída.
//
// Erros do Base voltam sem alteração. Se o ctx da requisição encerrar antes do
// slot, volta o erro do ctx; se o slot passar de MaxWait, um *WaitError.
type Transport struct {
	base     http.RoundTripper
	keyFn    KeyFunc
	pacer    application.Pacer
	inFlight application.InFlightGate
	stats    domain.StatsStore
	log      *zerolog.Logger
}

func NewTransport(opts TransportOptions) *Transport {
	t := &Transport{
		base:  opts.Base,
		keyFn: opts.KeyFn,
		pacer: application.Pacer{Store: opts.Store, MaxWait: opts.MaxWait},
		stats: opts.Stats,
		log:   loggerOrNop(opts.Logger),
	}
	if t.base == nil {
		t.base = http.DefaultTransport
	}
	if opts.Schedule != nil {
		t.pacer.Store = singleStore{sched: opts.Schedule}
		t.keyFn = sharedKeyFunc
	}
	if t.keyFn == nil {
		t.keyFn = sharedKeyFunc
	}
	if opts.MaxInFlight > 0 {
		t.inFlight = application.InFlightGate{
			Pool:    infra.NewChanPool(opts.MaxInFlight),
			Timeout: opts.InFlightTimeout,
		}
	}
	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := t.keyFn(req)

	dec := t.pacer.Acquire(ctx, domain.Key(key))
	record(ctx, t.stats, t.log, req, key, dec)
	if !dec.Allowed {
		closeBody(req)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &WaitError{Key: key, RetryAfter: dec.RetryAfter}
	}

	release, err := t.inFlight.Enter(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		release()
		return nil, err
	}
	if resp.Body == nil {
		release()
		return resp, nil
	}
	resp.Body = &releaseOnClose{ReadCloser: resp.Body, release: release}
	return resp, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

type releaseOnClose struct {
	io.ReadCloser
	release func()
}

func (r *releaseOnClose) Close() error {
	err := r.ReadCloser.Close()
	r.release()
	return err
}

var _ http.RoundTripper = (*Transport)(nil)
