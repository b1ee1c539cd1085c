package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kissanvaani/kissanvaani/internal/models"
)

// readJSON parses a corpus file holding an array of QA entries.
func readJSON(path string) ([]*models.QAEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []*models.QAEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// readXLSX parses a spreadsheet corpus. The first row is a header; columns are
// matched by name (question, answer, crop, source, id), case-insensitive.
// Rows without both a question and an answer are skipped.
func readXLSX(path string) ([]*models.QAEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []*models.QAEntry
	for _, row := range rows[1:] {
		e := &models.QAEntry{
			ID:       get(row, "id"),
			Question: get(row, "question"),
			Answer:   get(row, "answer"),
			Crop:     get(row, "crop"),
			Source:   get(row, "source"),
		}
		if e.Question == "" || e.Answer == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
