package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-processor/internal/points"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service validates, scores and stores receipts
type Service struct {
	validator   *points.Validator
	store       Store
	metrics     *Metrics
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(validator *points.Validator, store Store, metrics *Metrics) *Service {
	return NewServiceWithDeps(validator, store, metrics, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(validator *points.Validator, store Store, metrics *Metrics, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		validator:   validator,
		store:       store,
		metrics:     metrics,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessReceipt validates and scores a JSON receipt and stores the points
// under a new ID. Validation failures wrap points.ErrInvalidReceipt.
func (s *Service) ProcessReceipt(data []byte) (*Record, error) {
	receipt, err := s.validator.Validate(data)
	if err != nil {
		slog.Debug("Rejected receipt", "error", err)
		s.metrics.IncrementReceipts(outcomeRejected)
		return nil, err
	}

	record := &Record{
		ID:          s.idGenerator.Generate(),
		Points:      points.Score(receipt),
		ProcessedAt: s.timeSource.Now(),
	}

	if err := s.store.Insert(record); err != nil {
		s.metrics.IncrementReceipts(outcomeError)
		return nil, fmt.Errorf("saving points: %w", err)
	}

	slog.Debug("Points breakdown", "id", record.ID, "rules", points.Breakdown(receipt))
	slog.Info("Processed receipt", "id", record.ID, "retailer", receipt.Retailer, "points", record.Points)
	s.metrics.ObserveAccepted(record.Points)

	return record, nil
}

// GetPoints returns the points stored for a receipt ID. Unknown IDs fail
// with ErrNotFound.
func (s *Service) GetPoints(id string) (int, error) {
	record, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.IncrementLookups(outcomeNotFound)
		} else {
			s.metrics.IncrementLookups(outcomeError)
		}
		return 0, fmt.Errorf("getting points: %w", err)
	}
	s.metrics.IncrementLookups(outcomeFound)
	return record.Points, nil
}
