package importer

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/galien-mouassim/galien/internal/question"
)

var exportHeader = []string{
	"question", "option_a", "option_b", "option_c", "option_d", "option_e",
	"correct_options", "explanation", "module_id", "course_id", "source_id",
}

// Export writes the bank in the same CSV shape Parse accepts, so an
// export can be re-imported as-is. A UTF-8 BOM is prepended for Excel.
func Export(w io.Writer, questions []question.Question) error {
	if _, err := w.Write([]byte("\uFEFF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, q := range questions {
		rec := []string{
			q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE,
			q.CorrectOptions, q.Explanation,
			idStr(q.ModuleID), idStr(q.CourseID), idStr(q.SourceID),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func idStr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
