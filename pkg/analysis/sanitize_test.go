package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "email stripped",
			in:   map[string]any{"email": "a@b.com", "score": 42},
			want: map[string]any{"score": 42},
		},
		{
			name: "fragments are case-insensitive substrings",
			in: map[string]any{
				"UserID":         7,
				"home_Address":   "1 Main St",
				"PhoneNumber":    "555",
				"password_hash":  "x",
				"_id":            "abc",
				"mean":           3.2,
				"responses":      120,
				"Contact_Emails": []string{"x@y.z"},
			},
			want: map[string]any{"mean": 3.2, "responses": 120},
		},
		{
			name: "nested values are not scrubbed",
			in:   map[string]any{"columns": map[string]any{"email": "kept"}},
			want: map[string]any{"columns": map[string]any{"email": "kept"}},
		},
		{
			name: "nil",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_DoesNotModifyInput(t *testing.T) {
	in := map[string]any{"email": "a@b.com", "score": 42}
	Sanitize(in)
	assert.Len(t, in, 2)
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"object", map[string]any{"email": "a@b.com", "score": 42}, map[string]any{"score": 42}},
		{"array kept", []any{map[string]any{"email": "x"}}, []any{map[string]any{"email": "x"}}},
		{"string kept", "120 rows", "120 rows"},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeValue(tt.in))
		})
	}
}
