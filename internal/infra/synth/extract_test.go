package synth

import (
	"math"
	"testing"
)

func TestExtractSQL(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{
			name:    "sql fence",
			content: "Here you go:\n```sql\nSELECT *\nFROM invoices\nWHERE user_id = :user_id; -- done\n```\nThanks",
			want:    "SELECT * FROM invoices WHERE user_id = :user_id",
			ok:      true,
		},
		{
			name:    "plain fence",
			content: "```\nSELECT vendor FROM invoices WHERE user_id = :user_id\n```",
			want:    "SELECT vendor FROM invoices WHERE user_id = :user_id",
			ok:      true,
		},
		{
			name:    "bare statement",
			content: "The query is:\n  select id FROM invoices WHERE user_id = :user_id;\nIt lists ids",
			want:    "select id FROM invoices WHERE user_id = :user_id",
			ok:      true,
		},
		{
			name:    "bare common table expression",
			content: "WITH totals AS (SELECT vendor, sum(total_amount) s FROM invoices WHERE user_id = :user_id GROUP BY vendor)\nSELECT * FROM totals",
			want:    "WITH totals AS (SELECT vendor, sum(total_amount) s FROM invoices WHERE user_id = :user_id GROUP BY vendor) SELECT * FROM totals",
			ok:      true,
		},
		{
			name:    "prose containing with",
			content: "Sorry, I can't help with that.",
			ok:      false,
		},
		{
			name:    "prose starting with with",
			content: "With pleasure, but I need more detail about the vendor.",
			ok:      false,
		},
		{
			name:    "prose mentioning select mid sentence",
			content: "Please select a date range first.",
			ok:      false,
		},
		{
			name:    "comments and second statement",
			content: "```sql\n/* totals */ SELECT sum(total_amount) FROM invoices -- all\nWHERE user_id = :user_id; DROP TABLE invoices;\n```",
			want:    "SELECT sum(total_amount) FROM invoices WHERE user_id = :user_id",
			ok:      true,
		},
		{
			name:    "semicolon inside literal",
			content: "```sql\nSELECT * FROM invoices WHERE notes = 'a;b' AND user_id = :user_id;\n```",
			want:    "SELECT * FROM invoices WHERE notes = 'a;b' AND user_id = :user_id",
			ok:      true,
		},
		{
			name:    "no sql",
			content: "I am not sure what you mean.",
			ok:      false,
		},
	}

	for _, tc := range cases {
		got, ok := ExtractSQL(tc.content)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: expected (%q,%v) got (%q,%v)", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		name     string
		sql      string
		question string
		want     float64
	}{
		{
			name:     "select with where",
			sql:      "SELECT vendor FROM invoices WHERE user_id = :user_id",
			question: "list vendor",
			want:     0.87,
		},
		{
			name:     "join and terms",
			sql:      "SELECT i.description FROM items i JOIN invoices inv ON inv.id = i.invoice_id WHERE inv.user_id = :user_id",
			question: "items with description",
			want:     0.94,
		},
		{
			name:     "very short",
			sql:      "SELECT 1",
			question: "hi",
			want:     0.6,
		},
	}
	for _, tc := range cases {
		if got := Confidence(tc.sql, tc.question); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: expected %.2f got %.4f", tc.name, tc.want, got)
		}
	}
}
