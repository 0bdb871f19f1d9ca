package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const backupFile = "backup.json"

// handleExport serves /export/{kind}.csv and /export/backup.json as
// downloads built from one consistent snapshot.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")

	var (
		kind export.Kind
		err  error
	)
	if file != backupFile {
		name, ok := strings.CutSuffix(file, ".csv")
		if !ok {
			s.writeError(w, r, notFound(file))
			return
		}
		if kind, err = export.ParseKind(name); err != nil {
			s.writeError(w, r, notFound(file))
			return
		}
	}

	snap, err := s.dashboards.LoadSnapshot(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now()
	var (
		buf         bytes.Buffer
		contentType string
		filename    string
	)
	if kind == "" {
		err = export.WriteBackup(&buf, export.NewBackup(snap, now))
		contentType = "application/json"
		filename = export.Filename("fintrack-backup", "json", now)
	} else {
		err = export.WriteCSV(&buf, export.SnapshotRows(snap, kind, s.today()))
		contentType = "text/csv; charset=utf-8"
		filename = export.Filename(string(kind), "csv", now)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	atomic.AddInt64(&s.appMetrics.exports, 1)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export served",
		log.FieldOperation, log.OpExport,
		log.FieldRecordKind, exportLabel(kind),
		"bytes", buf.Len())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = buf.WriteTo(w)
}

func exportLabel(kind export.Kind) string {
	if kind == "" {
		return "backup"
	}
	return string(kind)
}

// notFound shares the 404 path with unknown records.
func notFound(what string) error {
	return fmt.Errorf("export %q: %w", what, store.ErrNotFound)
}
