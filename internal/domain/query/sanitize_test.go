package query

import "testing"

func TestSanitizeDropsVectorsAndRoundsSimilarity(t *testing.T) {
	rows := []Row{
		{
			"description":           "Coffee beans",
			"description_embedding": "[0.1,0.2]",
			"embedding":             []float32{0.1},
			"similarity":            0.123456,
			"similarity_score":      float32(0.98765),
			"total_price":           12.3456,
		},
	}

	got := Sanitize(rows, 0)
	if len(got) != 1 {
		t.Fatalf("expected one row got %d", len(got))
	}
	row := got[0]
	for _, key := range []string{"description_embedding", "embedding"} {
		if _, ok := row[key]; ok {
			t.Fatalf("expected %s to be removed", key)
		}
	}
	if row["similarity"] != 0.123 {
		t.Fatalf("expected similarity 0.123 got %v", row["similarity"])
	}
	if row["similarity_score"] != 0.988 {
		t.Fatalf("expected similarity_score 0.988 got %v", row["similarity_score"])
	}
	if row["total_price"] != 12.3456 {
		t.Fatalf("non similarity columns must be left alone, got %v", row["total_price"])
	}
	if _, ok := rows[0]["embedding"]; !ok {
		t.Fatalf("input rows must not be modified")
	}
}

func TestSanitizeCapsRows(t *testing.T) {
	rows := make([]Row, 5)
	for i := range rows {
		rows[i] = Row{"id": i}
	}
	if got := Sanitize(rows, 3); len(got) != 3 {
		t.Fatalf("expected 3 rows got %d", len(got))
	}
	if got := Sanitize(rows, 0); len(got) != 5 {
		t.Fatalf("expected uncapped 5 rows got %d", len(got))
	}
}
