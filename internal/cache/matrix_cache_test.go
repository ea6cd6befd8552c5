package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
)

func testQuery(sessionID uuid.UUID) domain.MatrixQuery {
	return domain.MatrixQuery{
		SessionID: sessionID,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildMatrixKeyScopedBySession(t *testing.T) {
	sessionID := uuid.New()
	key := buildMatrixKey(testQuery(sessionID))
	prefix := matrixKeyPrefix + ":" + sessionID.String() + ":"
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("key %q must start with %q so session invalidation can find it", key, prefix)
	}
}

func TestMatrixQueryHashIgnoresFilterOrder(t *testing.T) {
	sessionID := uuid.New()
	a := testQuery(sessionID)
	a.SKUCodes = []string{"SKU-2", "SKU-1"}
	a.Warehouses = []string{" W1", "W2 "}

	b := testQuery(sessionID)
	b.SKUCodes = []string{"SKU-1", "SKU-2"}
	b.Warehouses = []string{"W2", "W1"}

	if buildMatrixKey(a) != buildMatrixKey(b) {
		t.Fatal("filter ordering and whitespace must not change the cache key")
	}
}

func TestMatrixQueryHashDistinguishesQueries(t *testing.T) {
	sessionID := uuid.New()
	base := testQuery(sessionID)

	withPlan := testQuery(sessionID)
	planID := uuid.New()
	withPlan.PlanID = &planID

	withFilter := testQuery(sessionID)
	withFilter.Channels = []string{"online"}

	otherWindow := testQuery(sessionID)
	otherWindow.EndDate = otherWindow.EndDate.AddDate(0, 0, 1)

	keys := map[string]string{
		"base":        buildMatrixKey(base),
		"withPlan":    buildMatrixKey(withPlan),
		"withFilter":  buildMatrixKey(withFilter),
		"otherWindow": buildMatrixKey(otherWindow),
	}
	seen := make(map[string]string)
	for name, key := range keys {
		if prev, dup := seen[key]; dup {
			t.Fatalf("queries %s and %s collide on key %s", prev, name, key)
		}
		seen[key] = name
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoopMatrixCache()
	ctx := context.Background()
	query := testQuery(uuid.New())

	if err := c.Set(ctx, query, []domain.MatrixRow{{SKUCode: "SKU-1"}}); err != nil {
		t.Fatal(err)
	}
	rows, ok, err := c.Get(ctx, query)
	if err != nil || ok || rows != nil {
		t.Fatalf("noop cache must miss silently, got rows=%v ok=%v err=%v", rows, ok, err)
	}
	if err := c.InvalidateSession(ctx, query.SessionID); err != nil {
		t.Fatal(err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		t.Fatal(err)
	}
}
