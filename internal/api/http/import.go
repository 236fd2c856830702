package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
	"github.com/galien-mouassim/galien/internal/audit"
	"github.com/galien-mouassim/galien/internal/importer"
	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/textnorm"
)

// ImportScanHandler parses an uploaded CSV (multipart "file" field or raw
// body) and returns every row annotated with its duplicate analysis. No
// row is persisted here; this powers the import preview.
func ImportScanHandler(store *question.Store, defaultThreshold int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", 400)
				return
			}
			defer f.Close()
			body = f
		}
		rows, err := importer.Parse(body)
		if err != nil {
			http.Error(w, "bad csv: "+err.Error(), 400)
			return
		}
		pool, err := store.FullPool(r.Context())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		threshold := defaultThreshold
		analyzed := importer.Scan(rows, pool, threshold)
		if v, err := strconv.Atoi(r.URL.Query().Get("auto_exclude")); err == nil && v > 0 && v != threshold {
			threshold = v
			importer.Reapply(analyzed, threshold)
		}
		writeJSON(w, 200, map[string]any{
			"rows":         analyzed,
			"auto_exclude": threshold,
		})
	}
}

// ImportCommitHandler inserts the rows the operator kept after the scan.
func ImportCommitHandler(store *question.Store, log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Rows []importer.Row `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		uid, _ := auth.UserID(r)
		resolve := newTaxonomyResolver(r.Context(), store)
		inserted := 0
		failed := []int{}
		for _, row := range req.Rows {
			q := question.Question{
				Text:    row.Question,
				OptionA: row.OptionA, OptionB: row.OptionB, OptionC: row.OptionC,
				OptionD: row.OptionD, OptionE: row.OptionE,
				CorrectOptions: row.CorrectOptions,
				Explanation:    row.Explanation,
				ModuleID:       resolve.module(row.ModuleID, row.ModuleName),
				CourseID:       resolve.course(row.CourseID, row.CourseName),
				SourceID:       resolve.source(row.SourceID, row.SourceName),
				Status:         question.StatusApproved,
			}
			if uid > 0 {
				q.CreatedBy = &uid
			}
			if _, err := store.Insert(r.Context(), q); err != nil {
				failed = append(failed, row.RowNumber)
				continue
			}
			inserted++
		}
		if log != nil {
			_ = log.Record(r.Context(), audit.EventImportCompleted, strconv.FormatInt(uid, 10),
				map[string]any{"inserted": inserted, "failed": failed})
		}
		writeJSON(w, 200, map[string]any{"inserted": inserted, "failed_rows": failed})
	}
}

// taxonomyResolver maps CSV name columns onto existing taxonomy rows.
// Explicit ids always win; unknown names leave the field unclassified.
type taxonomyResolver struct {
	modules, courses, sources map[string]int64
}

func newTaxonomyResolver(ctx context.Context, store *question.Store) taxonomyResolver {
	var res taxonomyResolver
	res.modules, _ = store.ModuleIDByName(ctx)
	res.courses, _ = store.CourseIDByName(ctx)
	res.sources, _ = store.SourceIDByName(ctx)
	return res
}

func lookupByName(index map[string]int64, id *int64, name string) *int64 {
	if id != nil || name == "" {
		return id
	}
	want := textnorm.Normalize(name)
	for n, v := range index {
		if textnorm.Normalize(n) == want {
			v := v
			return &v
		}
	}
	return nil
}

func (t taxonomyResolver) module(id *int64, name string) *int64 {
	return lookupByName(t.modules, id, name)
}

func (t taxonomyResolver) course(id *int64, name string) *int64 {
	return lookupByName(t.courses, id, name)
}

func (t taxonomyResolver) source(id *int64, name string) *int64 {
	return lookupByName(t.sources, id, name)
}

// ExportCSVHandler streams the whole approved bank as CSV.
func ExportCSVHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.List(r.Context(), question.Filter{Status: question.StatusApproved, PageSize: 200, Page: 1})
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		// page through the rest
		for page := 2; len(qs)%200 == 0 && len(qs) > 0; page++ {
			more, err := store.List(r.Context(), question.Filter{Status: question.StatusApproved, PageSize: 200, Page: page})
			if err != nil {
				http.Error(w, "db error", 500)
				return
			}
			if len(more) == 0 {
				break
			}
			qs = append(qs, more...)
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="questions_export.csv"`)
		if err := importer.Export(w, qs); err != nil {
			http.Error(w, "export failed", 500)
			return
		}
	}
}
