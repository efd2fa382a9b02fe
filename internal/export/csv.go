// Package export renders a collection as a CSV file.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

// ContentType is served with CSV downloads.
const ContentType = "text/csv; charset=utf-8"

// csvRow defines the export columns; the tags are the header row.
type csvRow struct {
	Qty      int    `csv:"Qty"`
	Name     string `csv:"Name"`
	Number   string `csv:"Number"`
	Set      string `csv:"Set"`
	Rarity   string `csv:"Rarity"`
	Language string `csv:"Language"`
}

func toRows(items []models.CollectedCard) []csvRow {
	rows := make([]csvRow, 0, len(items))
	for _, item := range items {
		rarity := item.Rarity
		if rarity == "" {
			rarity = "Unknown"
		}
		rows = append(rows, csvRow{
			Qty:      item.Quantity,
			Name:     EscapeCSVCell(item.Name),
			Number:   EscapeCSVCell(item.Number),
			Set:      EscapeCSVCell(item.Set.Name),
			Rarity:   EscapeCSVCell(rarity),
			Language: item.Language.DisplayName(),
		})
	}
	return rows
}

// WriteCSV writes a header row and one row per collected card. Fields that
// contain commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, items []models.CollectedCard) error {
	if err := gocsv.Marshal(toRows(items), w); err != nil {
		return fmt.Errorf("failed to marshal collection csv: %w", err)
	}
	return nil
}

// MarshalCSV returns the CSV document for items.
func MarshalCSV(items []models.CollectedCard) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("pokemon-cards-%s.csv", t.UTC().Format("2006-01-02"))
}

// WriteFile writes the export into dir and returns the file's path.
func WriteFile(dir string, items []models.CollectedCard, now time.Time) (string, error) {
	data, err := MarshalCSV(items)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %q: %w", path, err)
	}
	return path, nil
}

// EscapeCSVCell protects against CSV formula injection by prefixing cells
// that start with a character spreadsheets treat as a formula.
func EscapeCSVCell(value string) string {
	if value == "" {
		return value
	}
	if strings.ContainsAny(value[:1], "=+-@|%\t\r\n") {
		return "'" + value
	}
	return value
}
