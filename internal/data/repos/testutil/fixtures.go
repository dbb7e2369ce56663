package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/rowcount-backend/internal/domain"
	"gorm.io/gorm"
)

// SeedCounter inserts a counter row directly, bypassing the aggregate, so
// tests can control timestamps and flags.
func SeedCounter(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, owner *uuid.UUID, archived bool, updatedAt time.Time) *types.Counter {
	tb.Helper()
	c := &types.Counter{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Name:        name,
		IsArchived:  archived,
		CreatedAt:   updatedAt,
		UpdatedAt:   updatedAt,
	}
	if err := tx.WithContext(ctx).Omit("History", "RowNotes", "WorkSessions", "Reminders").Create(c).Error; err != nil {
		tb.Fatalf("seed counter: %v", err)
	}
	return c
}
