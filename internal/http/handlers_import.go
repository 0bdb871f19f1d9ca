package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/importer/ofx"
	"fintrack/internal/log"
)

// MaxImportBytes bounds uploaded statement files.
const MaxImportBytes = 10 << 20

// handleImportOFX imports an OFX/QFX statement sent either as the "file"
// field of a multipart form or as the raw request body. Transactions the
// user already has are skipped.
func (s *Server) handleImportOFX(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxImportBytes); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errMalformedBody, err))
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: missing file field", errMalformedBody))
			return
		}
		defer f.Close()
		src = f
	}

	res, err := s.importer.Import(r.Context(), session(r), src, s.records)
	if err != nil {
		if errors.Is(err, ofx.ErrInvalidFile) {
			s.writeError(w, r, &core.ValidationError{Field: "file", Err: err})
			return
		}
		s.writeError(w, r, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.importedRecords, int64(res.Imported))

	log.FromContext(r.Context()).InfoContext(r.Context(), "Statement imported",
		log.FieldOperation, log.OpImport,
		"parsed", res.Parsed,
		"imported", res.Imported,
		"skipped", res.Skipped)

	if isHTMX(r) {
		msg := "Imported " + strconv.Itoa(res.Imported) + " transactions"
		if res.Skipped > 0 {
			msg += ", skipped " + strconv.Itoa(res.Skipped) + " already present"
		}
		SuccessResponse(string(export.KindTransactions), "imported", msg).Write(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
