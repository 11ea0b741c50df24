// Package importer handles the bulk CSV intake of equipment. It decides
// create-vs-skip by serial number: rows whose serial already exists are
// skipped, never merged. Client bulk import (owned elsewhere) merges on
// match instead; the asymmetry is the observed product behavior.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fieldops-backend/internal/ledger"
	"fieldops-backend/internal/store"
)

var templateHeader = []string{"Nombre del equipo", "Marca", "Descripción", "Serie", "URL Foto"}
var templateExample = []string{"Pulidora Industrial", "Makita", "9 pulgadas, 2200W", "MK-99827", "https://ejemplo.com/herramienta.jpg"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyFile is returned when the upload holds no data rows.
var ErrEmptyFile = errors.New("no data rows in file")

// Row is one parsed import line, already mapped to asset draft fields.
type Row struct {
	Name         string
	Description  string
	SerialNumber string
	ImageURL     string
}

// Result reports the outcome of one import batch.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Template renders the downloadable CSV template, BOM included so
// spreadsheet tools pick up the encoding.
func Template() []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString(strings.Join(templateHeader, ","))
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(templateExample, ","))
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Parse reads an uploaded CSV. The separator is auto-detected from the
// header row (; or ,), a UTF-8 BOM is tolerated, and rows without an
// equipment name are dropped.
func Parse(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	header, _, _ := bytes.Cut(raw, []byte("\n"))
	comma := ','
	if bytes.ContainsRune(header, ';') {
		comma = ';'
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	var rows []Row
	for _, record := range records[1:] {
		name := cell(record, 0)
		if name == "" {
			continue
		}
		brand := cell(record, 1)
		detail := cell(record, 2)
		description := brand
		switch {
		case brand != "" && detail != "":
			description = brand + " - " + detail
		case detail != "":
			description = detail
		}
		rows = append(rows, Row{
			Name:         name,
			Description:  description,
			SerialNumber: cell(record, 3),
			ImageURL:     cell(record, 4),
		})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.Trim(strings.TrimSpace(record[i]), `"'`)
}

// Importer reconciles parsed rows against storage and creates the new
// aggregates through the lifecycle engine.
type Importer struct {
	engine          *ledger.Engine
	store           store.Store
	defaultImageURL string
}

// NewImporter creates a bulk importer.
func NewImporter(e *ledger.Engine, s store.Store, defaultImageURL string) *Importer {
	return &Importer{engine: e, store: s, defaultImageURL: defaultImageURL}
}

// Import processes rows in order. A row is skipped when its serial number
// already exists in storage or was created earlier in the same batch; a
// duplicate serial is never a hard error, only a count.
func (im *Importer) Import(ctx context.Context, rows []Row, now time.Time, actor string) (Result, error) {
	seen, err := im.store.ListSerialNumbers(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		serial := row.SerialNumber
		if serial == "" {
			serial = fmt.Sprintf("SN-MOCK-%d-%d", now.UnixMilli(), i+1)
		}
		if _, dup := seen[serial]; dup {
			res.Skipped++
			continue
		}

		imageURL := row.ImageURL
		if imageURL == "" {
			imageURL = im.defaultImageURL
		}
		_, err := im.engine.Create(ctx, ledger.CreateIntent{
			Name:         row.Name,
			Description:  row.Description,
			SerialNumber: serial,
			ImageURL:     imageURL,
		}, now, actor)
		if err != nil {
			return res, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		seen[serial] = struct{}{}
		res.Created++
	}

	logrus.WithFields(logrus.Fields{
		"created": res.Created,
		"skipped": res.Skipped,
		"actor":   actor,
	}).Info("bulk import finished")
	return res, nil
}
