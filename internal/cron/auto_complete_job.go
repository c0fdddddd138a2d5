package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/logger"
)

const autoCompleteBatchSize = 100

// AutoCompleteJobParams configure the confirmation-deadline sweeper.
type AutoCompleteJobParams struct {
	Logger    *logger.Logger
	Reader    publishedOrderReader
	Completer orderAutoCompleter
	BatchSize int
}

type publishedOrderReader interface {
	FindPublishedPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type orderAutoCompleter interface {
	AutoComplete(ctx context.Context, orderID uuid.UUID) error
}

// NewAutoCompleteJob builds the cron job that completes published orders
// whose buyer confirmation window has lapsed.
func NewAutoCompleteJob(params AutoCompleteJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if params.Completer == nil {
		return nil, fmt.Errorf("order completer required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = autoCompleteBatchSize
	}
	return &autoCompleteJob{
		logg:      params.Logger,
		reader:    params.Reader,
		completer: params.Completer,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type autoCompleteJob struct {
	logg      *logger.Logger
	reader    publishedOrderReader
	completer orderAutoCompleter
	batchSize int
	now       func() time.Time
}

func (j *autoCompleteJob) Name() string { return "order-auto-complete" }

func (j *autoCompleteJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	due, err := j.reader.FindPublishedPastDeadline(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query orders past confirmation deadline: %w", err)
	}
	var errs []error
	completed := 0
	for _, order := range due {
		if err := j.completer.AutoComplete(ctx, order.ID); err != nil {
			orderCtx := j.logg.WithOrderID(ctx, order.ID.String())
			j.logg.Error(orderCtx, "auto-complete failed", err)
			errs = append(errs, fmt.Errorf("auto-complete order %s: %w", order.ID, err))
			continue
		}
		completed++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"due":       len(due),
		"completed": completed,
		"failed":    len(errs),
	})
	j.logg.Info(logCtx, "auto-complete sweep finished")
	return multierr.Combine(errs...)
}
