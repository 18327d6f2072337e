package repository

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	if !errors.Is(translate(gorm.ErrRecordNotFound), ErrNotFound) {
		t.Fatal("record not found must map to ErrNotFound")
	}
	wrapped := fmt.Errorf("query: %w", gorm.ErrRecordNotFound)
	if !errors.Is(translate(wrapped), ErrNotFound) {
		t.Fatal("wrapped record not found must map to ErrNotFound")
	}
	other := errors.New("deadlock")
	if translate(other) != other {
		t.Fatal("other errors pass through")
	}
}

func TestUpdated(t *testing.T) {
	if !errors.Is(updated(&gorm.DB{RowsAffected: 0}), ErrNotFound) {
		t.Fatal("zero rows must be ErrNotFound")
	}
	if err := updated(&gorm.DB{RowsAffected: 1}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	boom := errors.New("boom")
	if !errors.Is(updated(&gorm.DB{Error: boom}), boom) {
		t.Fatal("errors must pass through")
	}
}
