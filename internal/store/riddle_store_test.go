package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/riddleworks/dailyriddle/internal/models"
	"gorm.io/gorm"
)

func setupStoreDB(t *testing.T) *RiddleStore {
	t.Helper()
	dsn := fmt.Sprintf("file:riddlestore_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Riddle{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return NewRiddleStore(db)
}

func countLatest(t *testing.T, s *RiddleStore) int64 {
	t.Helper()
	var n int64
	if errCount := s.db.Model(&models.Riddle{}).Where("is_latest = ?", true).Count(&n).Error; errCount != nil {
		t.Fatalf("count latest: %v", errCount)
	}
	return n
}

func TestCreateMovesLatestFlag(t *testing.T) {
	s := setupStoreDB(t)
	ctx := context.Background()

	first, errCreate := s.Create(ctx, "q1", "a1", true)
	if errCreate != nil {
		t.Fatalf("create first: %v", errCreate)
	}
	if !first.IsLatest {
		t.Fatalf("expected first riddle to be latest")
	}

	for i := 2; i <= 5; i++ {
		if _, errNext := s.Create(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), true); errNext != nil {
			t.Fatalf("create %d: %v", i, errNext)
		}
		if n := countLatest(t, s); n != 1 {
			t.Fatalf("after create %d: expected exactly 1 latest riddle, got %d", i, n)
		}
	}

	latest, errLatest := s.GetLatest(ctx)
	if errLatest != nil {
		t.Fatalf("get latest: %v", errLatest)
	}
	if latest == nil || latest.Question != "q5" {
		t.Fatalf("expected q5 as latest, got %+v", latest)
	}
}

func TestGetLatestEmptyStore(t *testing.T) {
	s := setupStoreDB(t)

	latest, errLatest := s.GetLatest(context.Background())
	if errLatest != nil {
		t.Fatalf("get latest: %v", errLatest)
	}
	if latest != nil {
		t.Fatalf("expected nil latest on empty store, got %+v", latest)
	}
}

func TestListPagination(t *testing.T) {
	s := setupStoreDB(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		if _, errCreate := s.Create(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), true); errCreate != nil {
			t.Fatalf("create %d: %v", i, errCreate)
		}
	}

	total, errCount := s.Count(ctx)
	if errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}

	page, errList := s.List(ctx, 10, 20)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 riddles at offset 20, got %d", len(page))
	}
	if hasMore := int64(20+len(page)) < total; hasMore {
		t.Fatalf("expected hasMore=false at offset 20")
	}

	// Newest first; creation timestamps may collide within the test, so
	// ordering must fall back to descending id.
	first, errList := s.List(ctx, 1, 0)
	if errList != nil {
		t.Fatalf("list first: %v", errList)
	}
	if len(first) != 1 || first[0].Question != "q25" {
		t.Fatalf("expected q25 first, got %+v", first)
	}
}

func TestRateAccumulates(t *testing.T) {
	s := setupStoreDB(t)
	ctx := context.Background()

	riddle, errCreate := s.Create(ctx, "q", "a", true)
	if errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	var last *models.Riddle
	for _, rating := range []int{5, 3, 4} {
		var errRate error
		last, errRate = s.Rate(ctx, riddle.ID, rating)
		if errRate != nil {
			t.Fatalf("rate %d: %v", rating, errRate)
		}
	}

	if last.RatingCount != 3 {
		t.Fatalf("expected rating count 3, got %d", last.RatingCount)
	}
	if last.RatingSum != 12 {
		t.Fatalf("expected rating sum 12, got %d", last.RatingSum)
	}
	if last.AverageRating == nil || *last.AverageRating != 4.0 {
		t.Fatalf("expected average 4.0, got %v", last.AverageRating)
	}
}

func TestRateMissingRiddle(t *testing.T) {
	s := setupStoreDB(t)

	riddle, errRate := s.Rate(context.Background(), 999, 5)
	if errRate != nil {
		t.Fatalf("rate: %v", errRate)
	}
	if riddle != nil {
		t.Fatalf("expected nil for missing riddle, got %+v", riddle)
	}
}

func TestUpdateMovesLatestFlag(t *testing.T) {
	s := setupStoreDB(t)
	ctx := context.Background()

	first, _ := s.Create(ctx, "q1", "a1", true)
	second, _ := s.Create(ctx, "q2", "a2", true)

	updated, errUpdate := s.Update(ctx, first.ID, map[string]any{"is_latest": true})
	if errUpdate != nil {
		t.Fatalf("update: %v", errUpdate)
	}
	if updated == nil || !updated.IsLatest {
		t.Fatalf("expected updated riddle to be latest")
	}
	if n := countLatest(t, s); n != 1 {
		t.Fatalf("expected exactly 1 latest after update, got %d", n)
	}

	reloaded, _ := s.GetByID(ctx, second.ID)
	if reloaded.IsLatest {
		t.Fatalf("expected second riddle to lose the latest flag")
	}
}

func TestUpdateMissingRiddle(t *testing.T) {
	s := setupStoreDB(t)

	updated, errUpdate := s.Update(context.Background(), 42, map[string]any{"question": "x"})
	if errUpdate != nil {
		t.Fatalf("update: %v", errUpdate)
	}
	if updated != nil {
		t.Fatalf("expected nil for missing riddle, got %+v", updated)
	}
}
