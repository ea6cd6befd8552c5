package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func matrixRow(sku, wh, ch string, anchor float64) domain.MatrixRow {
	return domain.MatrixRow{
		SKUCode:       sku,
		WarehouseName: wh,
		Channel:       ch,
		StockAtAnchor: decimal.NewFromFloat(anchor),
	}
}

func TestGetMatrixPopulatesCache(t *testing.T) {
	repo := &fakePSIRepo{matrix: []domain.MatrixRow{matrixRow("SKU-1", "W1", "online", 10)}}
	cacheImpl := &fakeMatrixCache{}
	svc := NewPSIService(repo, cacheImpl)

	query := domain.MatrixQuery{SessionID: uuid.New()}
	rows, err := svc.GetMatrix(context.Background(), query)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if cacheImpl.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cacheImpl.sets)
	}

	if _, err := svc.GetMatrix(context.Background(), query); err != nil {
		t.Fatal(err)
	}
	if repo.fetchCalls != 1 {
		t.Fatalf("second read should hit the cache, repo calls = %d", repo.fetchCalls)
	}
}

func TestGetMatrixSurvivesCacheFailure(t *testing.T) {
	repo := &fakePSIRepo{matrix: []domain.MatrixRow{matrixRow("SKU-1", "W1", "online", 10)}}
	cacheImpl := &fakeMatrixCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := NewPSIService(repo, cacheImpl)

	rows, err := svc.GetMatrix(context.Background(), domain.MatrixQuery{SessionID: uuid.New()})
	if err != nil {
		t.Fatalf("cache failures must not surface: %v", err)
	}
	if len(rows) != 1 || repo.fetchCalls != 1 {
		t.Fatalf("expected a database read, rows=%d calls=%d", len(rows), repo.fetchCalls)
	}
}

func TestGetMatrixReturnsEmptySliceNotNil(t *testing.T) {
	svc := NewPSIService(&fakePSIRepo{}, nil)
	rows, err := svc.GetMatrix(context.Background(), domain.MatrixQuery{SessionID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

const validBaseCSV = `sku_code,sku_name,warehouse_name,channel,date,stock_at_anchor,inbound_qty,outbound_qty,stock_closing,stdstock
SKU-1,Cotton tee,Tokyo DC,online,2026-03-01,100,0,5,95,80
SKU-1,,Tokyo DC,retail,2026-03-01,40,10,2,48,30
`

func TestParseBaseCSV(t *testing.T) {
	sessionID := uuid.New()
	records, err := ParseBaseCSV(sessionID, strings.NewReader(validBaseCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.SessionID != sessionID || first.SKUCode != "SKU-1" || first.Channel != "online" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.SKUName == nil || *first.SKUName != "Cotton tee" {
		t.Fatalf("sku_name = %v, want Cotton tee", first.SKUName)
	}
	if !first.StockAtAnchor.Equal(decimal.NewFromInt(100)) || !first.StockClosing.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("unexpected quantities: %+v", first)
	}
	if records[1].SKUName != nil {
		t.Fatal("empty sku_name must stay nil")
	}
}

func TestParseBaseCSVRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{
			name: "wrong header",
			csv:  "sku,name,wh,ch,date,a,b,c,d,e\nSKU-1,x,W1,online,2026-03-01,1,2,3,4,5\n",
		},
		{
			name: "bad date",
			csv:  "sku_code,sku_name,warehouse_name,channel,date,stock_at_anchor,inbound_qty,outbound_qty,stock_closing,stdstock\nSKU-1,x,W1,online,03/01/2026,1,2,3,4,5\n",
		},
		{
			name: "bad quantity",
			csv:  "sku_code,sku_name,warehouse_name,channel,date,stock_at_anchor,inbound_qty,outbound_qty,stock_closing,stdstock\nSKU-1,x,W1,online,2026-03-01,abc,2,3,4,5\n",
		},
		{
			name: "missing key column",
			csv:  "sku_code,sku_name,warehouse_name,channel,date,stock_at_anchor,inbound_qty,outbound_qty,stock_closing,stdstock\n,x,W1,online,2026-03-01,1,2,3,4,5\n",
		},
		{
			name: "header only",
			csv:  "sku_code,sku_name,warehouse_name,channel,date,stock_at_anchor,inbound_qty,outbound_qty,stock_closing,stdstock\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseBaseCSV(uuid.New(), strings.NewReader(tc.csv)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestImportBaseCSVReplacesSessionData(t *testing.T) {
	repo := &fakePSIRepo{}
	cacheImpl := &fakeMatrixCache{}
	svc := NewPSIService(repo, cacheImpl)

	sessionID := uuid.New()
	count, err := svc.ImportBaseCSV(context.Background(), sessionID, strings.NewReader(validBaseCSV))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("imported %d records, want 2", count)
	}
	if repo.replacedFor != sessionID || len(repo.replaced) != 2 {
		t.Fatalf("replace not called for session: %+v", repo.replacedFor)
	}
	if cacheImpl.invalidated != 1 || cacheImpl.invalidLastA != sessionID {
		t.Fatal("import must invalidate the session's cached matrices")
	}
}
