package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/storage"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
	"gorm.io/gorm"
)

// Deps carries what the resource services share. Events, Queue and Holidays
// may be nil, in which case the matching side effect is skipped.
type Deps struct {
	DB       *gorm.DB
	Blobs    storage.Provider
	Events   *EventHub
	Queue    NotificationQueue
	Holidays *HolidayService
	Workflow config.WorkflowConfig
	Upload   config.UploadConfig
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return response.NewNotFound(msg)
	}
	return err
}

// missingParent is the violation for a reference to a record that does not exist.
func missingParent(field, entity string) error {
	return response.NewFieldError(field, fmt.Sprintf("%s must reference an existing %s", field, entity))
}

// lockParent reads a parent record under a row lock inside tx, so it cannot be
// removed before the child row is committed. A missing parent is a violation on field.
func lockParent[T any](ctx context.Context, tx *gorm.DB, c *store.Collection[T], id uint, field, entity string) (*T, error) {
	parent, err := c.WithTx(tx).Lock(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, missingParent(field, entity)
	}
	return parent, err
}

// checkTransition rejects status jumps when strict transitions are enabled.
func checkTransition[S ~string](cfg config.WorkflowConfig, lifecycle []S, from, to S) error {
	if !cfg.StrictTransitions || models.CanTransition(lifecycle, from, to) {
		return nil
	}
	return response.NewFieldError("status", fmt.Sprintf("status cannot change from %s to %s", from, to))
}

// normalizeDate is used after binding has already checked the isodate rule.
func normalizeDate(field, value string) (string, error) {
	d, err := validation.NormalizeDate(value)
	if err != nil {
		return "", response.NewFieldError(field, fmt.Sprintf("%s must be a valid ISO-8601 date", field))
	}
	return d, nil
}

func today() time.Time {
	return truncateDay(time.Now())
}
