package importer

import (
	"strings"
	"testing"

	"github.com/galien-mouassim/galien/internal/similarity"
)

const sampleCSV = "\uFEFFquestion,option_a,option_b,option_c,option_d,option_e,correct_options,module_id\n" +
	"Quel est le role du foie,La digestion,La detoxification,Le stockage,,,\"B,C\",3\n" +
	"quel est le rôle du foie ?,La digestion,La détoxification,Le stockage,,,\"b;c\",3\n" +
	",Sans question,,,,,A,\n"

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].RowNumber != 2 {
		t.Fatalf("row numbering must count the header, got %d", rows[0].RowNumber)
	}
	if rows[0].Question != "Quel est le role du foie" || rows[0].CorrectOptions != "B,C" {
		t.Fatalf("bad first row: %+v", rows[0])
	}
	if rows[0].ModuleID == nil || *rows[0].ModuleID != 3 {
		t.Fatalf("module_id not parsed: %+v", rows[0].ModuleID)
	}
	if rows[2].ModuleID != nil {
		t.Fatalf("empty module_id must stay nil")
	}
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("foo,bar\n1,2\n")); err == nil {
		t.Fatalf("expected error for unrecognized header")
	}
}

func TestScanFlagsBatchDuplicates(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	analyzed := Scan(rows, nil, 80)
	if len(analyzed) != 3 {
		t.Fatalf("expected 3 analyzed rows, got %d", len(analyzed))
	}

	first := analyzed[0]
	if !first.Include || first.Percent != 0 {
		t.Fatalf("first row has nothing before it: %+v", first)
	}

	// Second row duplicates the first within the same batch.
	second := analyzed[1]
	if second.BestBatch == nil || second.BestBatch.Percent != 100 {
		t.Fatalf("batch duplicate not detected: %+v", second.BestBatch)
	}
	if second.BestBatch.RowNumber != 2 || second.BestBatch.Source != similarity.SourceBatch {
		t.Fatalf("batch provenance wrong: %+v", second.BestBatch)
	}
	if second.Include {
		t.Fatalf("row at 100%% must be auto-excluded at threshold 80")
	}
	if second.Band != similarity.BandHigh {
		t.Fatalf("band = %q, want high", second.Band)
	}

	// Third row has no question text.
	if analyzed[2].ValidationError == "" || analyzed[2].Include {
		t.Fatalf("invalid row must be excluded: %+v", analyzed[2])
	}
}

func TestScanAgainstBankPool(t *testing.T) {
	rows, _ := Parse(strings.NewReader(sampleCSV))
	moduleID := int64(3)
	bank := []similarity.PoolEntry{{
		Source: similarity.SourceBank,
		Candidate: similarity.Candidate{
			ID:         77,
			Question:   "Quel est le role du foie",
			Options:    [5]string{"La digestion", "La detoxification", "Le stockage", "", ""},
			Correction: "B,C",
			ModuleID:   &moduleID,
		},
	}}
	analyzed := Scan(rows[:1], bank, 80)
	if analyzed[0].BestBank == nil || analyzed[0].BestBank.Percent != 100 {
		t.Fatalf("bank duplicate not detected: %+v", analyzed[0].BestBank)
	}
	if analyzed[0].BestBank.ID != 77 || analyzed[0].BestBank.Source != similarity.SourceBank {
		t.Fatalf("bank provenance wrong: %+v", analyzed[0].BestBank)
	}
}

func TestReapplyThreshold(t *testing.T) {
	rows, _ := Parse(strings.NewReader(sampleCSV))
	analyzed := Scan(rows, nil, 80)
	if analyzed[1].Include {
		t.Fatalf("precondition: duplicate excluded at 80")
	}
	Reapply(analyzed, 101)
	if !analyzed[1].Include {
		t.Fatalf("raising the threshold above 100 must re-include the row")
	}
	if analyzed[2].Include {
		t.Fatalf("invalid rows stay excluded at any threshold")
	}
	Reapply(analyzed, 50)
	if analyzed[1].Include {
		t.Fatalf("lowering the threshold must exclude again")
	}
}
