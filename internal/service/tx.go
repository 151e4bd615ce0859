package service

import (
	"context"
	"fmt"
	"time"

	"inventrack/internal/apierror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. Any error returned by fn,
// including a classified *apierror.Error, rolls the transaction back.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.BadRequest(apierror.CodeBadRequest, fmt.Sprintf("%s is not a valid id", field))
	}
	return id, nil
}

func parseOptionalID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

const dateLayout = "2006-01-02"

// parseDateRange turns inclusive YYYY-MM-DD bounds into a UTC [from, to) range.
// Missing bounds are returned as nil.
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return nil, nil, apierror.BadRequest(apierror.CodeBadRequest, "from must be YYYY-MM-DD")
		}
		start = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return nil, nil, apierror.BadRequest(apierror.CodeBadRequest, "to must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, apierror.BadRequest(apierror.CodeBadRequest, "from must not be after to")
	}
	return start, end, nil
}

func normalizePage(page, limit, defLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
