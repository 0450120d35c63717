package services

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/routes/domain/entities/routedictionary"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/serrors"
)

// routeCSVColumns is the minimum width of a dictionary row. The feed
// spreads one route over many columns; only five of them matter here.
const routeCSVColumns = 12

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// RouteDictionaryService imports the authority route feed. Each record
// is upserted in its own transaction so one malformed row does not roll
// back the thousands before it.
type RouteDictionaryService struct {
	routes routedictionary.Repository
}

func NewRouteDictionaryService(routes routedictionary.Repository) *RouteDictionaryService {
	return &RouteDictionaryService{routes: routes}
}

func (s *RouteDictionaryService) GetPaginated(
	ctx context.Context,
	params *routedictionary.FindParams,
) ([]routedictionary.RouteDictionary, int64, error) {
	var (
		entries []routedictionary.RouteDictionary
		total   int64
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entries, total, err = s.routes.GetPaginated(txCtx, params)
		return err
	})
	if err != nil {
		return nil, 0, serrors.Internal("failed to list route dictionary entries", err)
	}
	return entries, total, nil
}

// openPayload unwraps gzip and zip containers by filename extension.
// Zip archives contribute their first member only.
func openPayload(filename string, content io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return gzip.NewReader(content)
	case ".zip":
		raw, err := io.ReadAll(content)
		if err != nil {
			return nil, err
		}
		archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			return nil, err
		}
		if len(archive.File) == 0 {
			return nil, errors.New("zip archive is empty")
		}
		return archive.File[0].Open()
	default:
		return content, nil
	}
}

// Import parses the feed and upserts every complete record, keyed by
// the authority route code. Rows missing any of the code or type
// columns are counted as skipped.
func (s *RouteDictionaryService) Import(ctx context.Context, filename string, content io.Reader) (ImportResult, error) {
	payload, err := openPayload(filename, content)
	if err != nil {
		return ImportResult{}, serrors.Validation("INVALID_FILE", "unreadable dictionary payload", err)
	}

	reader := csv.NewReader(payload)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return ImportResult{}, serrors.Validation("EMPTY_FILE", "dictionary file has no rows", nil)
		}
		return ImportResult{}, serrors.Validation("INVALID_FILE", "malformed dictionary file", err)
	}

	var result ImportResult
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, serrors.Validation("INVALID_FILE", "malformed dictionary file", err)
		}
		if len(row) < routeCSVColumns {
			result.Skipped++
			continue
		}

		entry := routedictionary.RouteDictionary{
			AuthRouteCode: row[11],
			OPRouteCode:   row[9] + row[7],
			UserRouteCode: row[8],
			RouteType:     row[1],
			Operator:      row[3],
		}
		if entry.AuthRouteCode == "" || entry.OPRouteCode == "" || entry.UserRouteCode == "" || entry.RouteType == "" {
			result.Skipped++
			continue
		}

		var created bool
		err = composables.InTx(ctx, func(txCtx context.Context) error {
			_, created, err = s.routes.Upsert(txCtx, entry)
			return err
		})
		if err != nil {
			return result, serrors.Internal("failed to upsert route dictionary entry", errors.Wrapf(err, "route %s", entry.AuthRouteCode))
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}
