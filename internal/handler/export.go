// Package handler: export.go implements GET /trips/{tripId}/messages/export.
// Returns the trip's whole chat as a flat table, as JSON by default or CSV
// with ?format=csv.
package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of a CSV export.
var csvHeaders = []string{"seq", "author_id", "author_name", "text", "created_at"}

// ExportTranscript handles GET /trips/{tripId}/messages/export. Members only.
func (s *Server) ExportTranscript(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json":
		default:
			s.writeServiceError(w, r, fmt.Errorf("%w: format must be csv or json", errBadRequest))
			return
		}
	}

	rows, err := s.chat.Transcript(r.Context(), tripID, reader)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if wantCSV {
		if err := writeCSV(w, tripID.String(), rows); err != nil {
			s.writeServiceError(w, r, err)
		}
		return
	}
	out := make([]TranscriptRow, len(rows))
	for i, row := range rows {
		out[i] = TranscriptRow(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as an attachment. The whole file is buffered so an
// encoding failure is returned before any header is written.
func writeCSV(w http.ResponseWriter, tripID string, rows []domain.TranscriptRow) error {
	var buf bytes.Buffer
	if err := encodeTranscriptCSV(&buf, rows); err != nil {
		return fmt.Errorf("handler.ExportTranscript: encode csv: %w", err)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-`+tripID+`-chat.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

// encodeTranscriptCSV writes the header row and one record per row to dst.
func encodeTranscriptCSV(dst io.Writer, rows []domain.TranscriptRow) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		err := cw.Write([]string{
			strconv.FormatInt(row.Seq, 10),
			row.AuthorID,
			row.AuthorName,
			row.Text,
			row.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
