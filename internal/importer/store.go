package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// MetaFromPath derives workbook metadata from a file name such as
// "RDDT.xlsx" or "RDDT_Q2 model.xlsx": the ticker is the upper-cased text
// before the first underscore, space or dot.
func MetaFromPath(path string) Meta {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ticker := base
	if i := strings.IndexAny(base, "_ ."); i > 0 {
		ticker = base[:i]
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	return Meta{Ticker: ticker, Company: ticker}
}

// ImportToStore imports the workbook at path and upserts the result by
// ticker. Every attempt is recorded in the store's import history.
func (im *Importer) ImportToStore(ctx context.Context, store core.Store, path string, meta Meta) (*core.StoredCompany, error) {
	if meta.Ticker == "" {
		return nil, fmt.Errorf("import of %s requires a ticker", path)
	}

	rec := &core.ImportRecord{Ticker: meta.Ticker, File: path}
	if err := store.RecordImport(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	stored, err := im.importToStore(ctx, store, path, meta)

	metrics, errMsg := 0, ""
	if err != nil {
		errMsg = err.Error()
	} else {
		metrics = stored.MetricCount
	}
	if cerr := store.CompleteImport(ctx, rec.ID, metrics, errMsg); cerr != nil {
		im.logger.Warn("failed to complete import record", slog.String("id", rec.ID), slog.String("error", cerr.Error()))
	}
	return stored, err
}

func (im *Importer) importToStore(ctx context.Context, store core.Store, path string, meta Meta) (*core.StoredCompany, error) {
	company, err := im.ImportFile(path, meta)
	if err != nil {
		return nil, err
	}
	stored, err := store.SaveCompany(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", meta.Ticker, err)
	}
	im.logger.Info("imported workbook",
		slog.String("file", path),
		slog.String("ticker", stored.Ticker),
		slog.Int("metrics", stored.MetricCount))
	return stored, nil
}
