package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/xuri/excelize/v2"

	"github.com/campusshop/storefront/internal/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// xlsxSheet is the worksheet the order table is written to.
	xlsxSheet = "Orders"
)

// GetExport handles GET /events/{eventID}/export.
// ?format=csv and ?format=xlsx return file downloads; the default is JSON.
// All three render the same table.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "xlsx":
	default:
		badRequest(w, r, fmt.Sprintf("unknown format %q (want json, csv or xlsx)", format))
		return
	}

	event, table, err := s.export.Table(r.Context(), eventID)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}

	switch format {
	case "csv":
		body, err := encodeCSV(table)
		if err != nil {
			s.writeError(w, r, err, "event")
			return
		}
		writeDownload(w, contentTypeCSV, event.Slug+"-orders.csv", body)
	case "xlsx":
		body, err := encodeXLSX(table)
		if err != nil {
			s.writeError(w, r, err, "event")
			return
		}
		writeDownload(w, contentTypeXLSX, event.Slug+"-orders.xlsx", body)
	default:
		render.JSON(w, r, exportToResponse(table))
	}
}

// SyncSheet handles POST /events/{eventID}/export/sheet-sync. The table is
// queued for the sheet worker, which replaces the event's sheet wholesale.
func (s *Server) SyncSheet(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	table, err := s.export.SyncSheet(r.Context(), eventID)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, exportToResponse(table))
}

func exportToResponse(t domain.ExportTable) ExportResponse {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return ExportResponse{Headers: t.Headers, Rows: rows}
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client has the status line already; nothing left to report.
	w.Write(body)
}

// encodeCSV writes the header row followed by every data row.
func encodeCSV(t domain.ExportTable) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("handler.encodeCSV: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("handler.encodeCSV: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeXLSX writes the table to a single-sheet workbook with the header
// row frozen.
func encodeXLSX(t domain.ExportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("handler.encodeXLSX: %w", err)
	}
	rows := append([][]string{t.Headers}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("handler.encodeXLSX: %w", err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("handler.encodeXLSX: %w", err)
		}
	}
	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("handler.encodeXLSX: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("handler.encodeXLSX: %w", err)
	}
	return buf.Bytes(), nil
}
