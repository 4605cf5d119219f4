package store

import (
	"reflect"
	"testing"
)

func TestBindPositional(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		params map[string]any
		want   string
		args   []any
	}{
		{
			name:   "single parameter",
			text:   "SELECT * FROM invoices WHERE user_id = :user_id",
			params: map[string]any{"user_id": int64(4)},
			want:   "SELECT * FROM invoices WHERE user_id = $1",
			args:   []any{int64(4)},
		},
		{
			name:   "casts and literals untouched",
			text:   "SELECT total_amount::text, '10:30' AS t FROM invoices WHERE user_id = :user_id AND description_embedding::vector <-> '[0.1,0.2]'::vector < 1",
			params: map[string]any{"user_id": int64(4)},
			want:   "SELECT total_amount::text, '10:30' AS t FROM invoices WHERE user_id = $1 AND description_embedding::vector <-> '[0.1,0.2]'::vector < 1",
			args:   []any{int64(4)},
		},
		{
			name:   "repeated parameter reuses position",
			text:   `SELECT "a:b" FROM invoices WHERE user_id = :user_id OR owner = :user_id AND note = 'it''s :user_id'`,
			params: map[string]any{"user_id": int64(9)},
			want:   `SELECT "a:b" FROM invoices WHERE user_id = $1 OR owner = $1 AND note = 'it''s :user_id'`,
			args:   []any{int64(9)},
		},
		{
			name:   "apostrophe in line comment",
			text:   "SELECT * FROM invoices -- it's :draft\nWHERE user_id = :user_id",
			params: map[string]any{"user_id": int64(3)},
			want:   "SELECT * FROM invoices -- it's :draft\nWHERE user_id = $1",
			args:   []any{int64(3)},
		},
		{
			name:   "block comment",
			text:   "SELECT /* don't bind :other */ id FROM invoices WHERE user_id = :user_id",
			params: map[string]any{"user_id": int64(3)},
			want:   "SELECT /* don't bind :other */ id FROM invoices WHERE user_id = $1",
			args:   []any{int64(3)},
		},
		{
			name:   "array slice",
			text:   "SELECT tags[1:2] FROM invoices WHERE user_id = :user_id",
			params: map[string]any{"user_id": int64(1)},
			want:   "SELECT tags[1:2] FROM invoices WHERE user_id = $1",
			args:   []any{int64(1)},
		},
	}

	for _, tc := range cases {
		got, args, err := bindPositional(tc.text, tc.params)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.want, got)
		}
		if !reflect.DeepEqual(args, tc.args) {
			t.Fatalf("%s: expected args %v got %v", tc.name, tc.args, args)
		}
	}
}

func TestBindPositionalMissingParameter(t *testing.T) {
	if _, _, err := bindPositional("SELECT * FROM items WHERE id = :item_id", map[string]any{}); err == nil {
		t.Fatalf("expected error for unbound parameter")
	}
}
