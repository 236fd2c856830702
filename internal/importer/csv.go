// Package importer parses bulk CSV question files and runs the duplicate
// scan over each row before anything is persisted.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one parsed CSV line. RowNumber is 1-based and counts the header,
// matching what operators see in their spreadsheet.
type Row struct {
	RowNumber      int    `json:"row_number"`
	Question       string `json:"question"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
	OptionE        string `json:"option_e"`
	CorrectOptions string `json:"correct_options"`
	Explanation    string `json:"explanation"`
	ModuleID       *int64 `json:"module_id"`
	CourseID       *int64 `json:"course_id"`
	SourceID       *int64 `json:"source_id"`
	ModuleName     string `json:"module_name,omitempty"`
	CourseName     string `json:"course_name,omitempty"`
	SourceName     string `json:"source_name,omitempty"`
}

// recognized header names, lowercased. Aliases cover the export format
// and common hand-written variants.
var headerAliases = map[string]string{
	"question":        "question",
	"option_a":        "option_a",
	"option_b":        "option_b",
	"option_c":        "option_c",
	"option_d":        "option_d",
	"option_e":        "option_e",
	"correct_options": "correct_options",
	"correct_option":  "correct_options",
	"correction":      "correct_options",
	"explanation":     "explanation",
	"module_id":       "module_id",
	"course_id":       "course_id",
	"source_id":       "source_id",
	"module_name":     "module_name",
	"course_name":     "course_name",
	"source_name":     "source_name",
}

// Parse reads a header-mapped CSV stream. Unknown columns are ignored;
// short records are padded. A BOM on the first header cell is stripped.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[int]string{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if name, ok := headerAliases[h]; ok {
			cols[i] = name
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no recognized columns in header %v", header)
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := Row{RowNumber: line}
		for i, field := range rec {
			name, ok := cols[i]
			if !ok {
				continue
			}
			field = strings.TrimSpace(field)
			switch name {
			case "question":
				row.Question = field
			case "option_a":
				row.OptionA = field
			case "option_b":
				row.OptionB = field
			case "option_c":
				row.OptionC = field
			case "option_d":
				row.OptionD = field
			case "option_e":
				row.OptionE = field
			case "correct_options":
				row.CorrectOptions = field
			case "explanation":
				row.Explanation = field
			case "module_id":
				row.ModuleID = intOrNil(field)
			case "course_id":
				row.CourseID = intOrNil(field)
			case "source_id":
				row.SourceID = intOrNil(field)
			case "module_name":
				row.ModuleName = field
			case "course_name":
				row.CourseName = field
			case "source_name":
				row.SourceName = field
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func intOrNil(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
