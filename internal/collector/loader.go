package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/normalizer"
	"MeasureInGoods/internal/recorder"
	"MeasureInGoods/internal/telemetry"
)

// DefaultTimeout bounds a single series request.
const DefaultTimeout = 15 * time.Second

// ErrSuperseded marks a response that arrived after a newer request started.
var ErrSuperseded = errors.New("request superseded")

// Request is one series load.
type Request struct {
	Path           string
	Name           string
	LoadingMessage string
}

// Loader owns the load status of one page. Only the most recently started
// request may change the status; starting a new one cancels the previous.
type Loader struct {
	fetcher  Fetcher
	recorder recorder.Recorder
	timeout  time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	status model.LoadStatus
	path   string // request the status belongs to; empty after SetStatus
	closed bool
}

// NewLoader creates a Loader. A nil recorder disables history.
func NewLoader(fetcher Fetcher, rec recorder.Recorder, timeout time.Duration) *Loader {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{
		fetcher:  fetcher,
		recorder: rec,
		timeout:  timeout,
		status:   model.Idle{},
	}
}

// Status returns the current load status.
func (l *Loader) Status() model.LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Current returns the status together with the path of the request it
// belongs to. The path is empty for a status set without a request.
func (l *Loader) Current() (model.LoadStatus, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.path
}

// SetStatus replaces the status without a request, superseding any in flight.
func (l *Loader) SetStatus(s model.LoadStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.supersede()
	l.status = s
	l.path = ""
}

// Load fetches req and applies the result if no newer call started in the
// meantime. applied is false for a superseded call, which then returns the
// status set by its successor.
func (l *Loader) Load(ctx context.Context, req Request) (status model.LoadStatus, applied bool) {
	l.mu.Lock()
	if l.closed {
		defer l.mu.Unlock()
		return l.status, false
	}
	l.supersede()
	gen := l.gen
	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	l.cancel = cancel
	l.status = model.Loading{Message: req.LoadingMessage}
	l.path = req.Path
	l.mu.Unlock()
	defer cancel()

	id := uuid.NewString()
	reqCtx, span := telemetry.StartSpan(reqCtx, "collector.load")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.id", id),
		attribute.String("resource.path", req.Path),
		attribute.String("fetcher", l.fetcher.Name()),
	)

	start := time.Now()
	series, err := l.fetcher.FetchSeries(reqCtx, req.Path, req.Name)
	elapsed := time.Since(start)

	evt := &recorder.FetchEvent{RequestID: id, Path: req.Path, Duration: elapsed}
	next := l.settle(evt, series, err)

	l.mu.Lock()
	applied = gen == l.gen
	if applied {
		l.cancel = nil
		l.status = next
	} else {
		span.SetAttributes(attribute.Bool("superseded", true))
		evt.Outcome = recorder.OutcomeSuperseded
		evt.Err = ErrSuperseded.Error()
	}
	status = l.status
	l.mu.Unlock()

	if err != nil && applied {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("[WARN] load %s failed: %v", req.Path, err)
	}
	l.record(evt)
	return status, applied
}

// settle fills evt and returns the status the outcome maps to.
func (l *Loader) settle(evt *recorder.FetchEvent, series *model.Series, err error) model.LoadStatus {
	if err != nil {
		evt.Outcome = recorder.OutcomeError
		evt.Err = err.Error()
		var se *StatusError
		if errors.As(err, &se) {
			evt.StatusCode = se.Code
		}
		return model.Failed{Message: failureMessage(err, l.timeout)}
	}
	evt.Outcome = recorder.OutcomeLoaded
	evt.StatusCode = 200
	if series != nil {
		evt.Points = len(series.Points)
		if evt.Points == 0 && series.Numerator != nil {
			evt.Points = len(series.Numerator.Points)
		}
	}
	return model.NewLoaded(series)
}

// Close cancels any outstanding request. Later Load calls are ignored.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.supersede()
	l.closed = true
}

// supersede invalidates the in-flight request. Callers hold mu.
func (l *Loader) supersede() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) record(evt *recorder.FetchEvent) {
	if err := l.recorder.RecordFetch(evt); err != nil {
		log.Printf("[WARN] record fetch: %v", err)
	}
}

func failureMessage(err error, timeout time.Duration) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Request timed out after %s", timeout)
	case errors.Is(err, normalizer.ErrMalformedPayload):
		return "The API returned an unreadable response."
	default:
		return err.Error()
	}
}
