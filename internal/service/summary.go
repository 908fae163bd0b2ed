package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"healthdash/internal/summary"
)

// maxSummaryPayload caps the bytes sent inline to the summarizer.
const maxSummaryPayload = 20 << 20

// SummaryService produces AI summaries of stored documents.
type SummaryService interface {
	// Summarize sends the document payload to the summarizer. Only one request per
	// document may be in flight.
	Summarize(ctx context.Context, documentID string) (string, error)
}

type summaryService struct {
	records    RecordService
	summarizer summary.Summarizer
	requests   *prometheus.CounterVec
	log        *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSummaryService registers summary_requests_total on reg and constructs the service.
func NewSummaryService(records RecordService, summarizer summary.Summarizer, reg prometheus.Registerer, log *zap.Logger) (SummaryService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summary_requests_total",
		Help: "Document summary requests by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		if err := reg.Register(requests); err != nil {
			return nil, err
		}
	}
	return &summaryService{
		records:    records,
		summarizer: summarizer,
		requests:   requests,
		log:        log,
		inflight:   make(map[string]struct{}),
	}, nil
}

func (s *summaryService) Summarize(ctx context.Context, documentID string) (text string, err error) {
	ctx, span := otel.Tracer("healthdash/service").Start(ctx, "SummaryService.Summarize",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	defer func() {
		s.requests.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	doc, err := s.records.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !doc.IsImage() {
		return "", summary.ErrUnsupportedType
	}

	if !s.acquire(documentID) {
		return "", ErrSummaryInProgress
	}
	defer s.release(documentID)

	rc, _, err := s.records.OpenDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	payload, err := io.ReadAll(io.LimitReader(rc, maxSummaryPayload+1))
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	if len(payload) > maxSummaryPayload {
		return "", fmt.Errorf("%w: document exceeds %d bytes", summary.ErrRequestFailed, maxSummaryPayload)
	}

	text, err = s.summarizer.Summarize(ctx, summary.Request{ContentType: doc.ContentType, Payload: payload})
	if err != nil {
		s.log.Warn("summary failed", zap.String("document_id", documentID), zap.Error(err))
		return "", err
	}
	s.log.Info("summary generated", zap.String("document_id", documentID), zap.Int("chars", len(text)))
	return text, nil
}

func (s *summaryService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *summaryService) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, summary.ErrUnsupportedType):
		return "unsupported"
	case errors.Is(err, ErrSummaryInProgress):
		return "in_progress"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "failed"
	}
}
