package batch

import (
	"reflect"
	"strings"
	"testing"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		accs     []string
		ceiling  int
		expected []Key
	}{
		{
			name:     "empty_input_yields_single_empty_key",
			accs:     nil,
			ceiling:  1000,
			expected: []Key{""},
		},
		{
			name:     "single_accession",
			accs:     []string{"AB000001"},
			ceiling:  1000,
			expected: []Key{"AB000001"},
		},
		{
			name:     "all_fit_one_batch",
			accs:     []string{"AB000001", "CP000002"},
			ceiling:  1000,
			expected: []Key{"AB000001,CP000002"},
		},
		{
			name:     "closes_before_reaching_ceiling",
			accs:     []string{"AAAA", "BBBB", "CCCC"},
			ceiling:  10,
			expected: []Key{"AAAA,BBBB", "CCCC"},
		},
		{
			name:     "exact_ceiling_closes_batch",
			accs:     []string{"AAAA", "BBBB"},
			ceiling:  8,
			expected: []Key{"AAAA", "BBBB"},
		},
		{
			name:     "separators_do_not_count",
			accs:     []string{"AAA", "BBB", "CCC"},
			ceiling:  10,
			expected: []Key{"AAA,BBB,CCC"},
		},
		{
			name:     "oversized_accession_stands_alone",
			accs:     []string{"AB", strings.Repeat("X", 30), "CD"},
			ceiling:  20,
			expected: []Key{"AB", Key(strings.Repeat("X", 30)), "CD"},
		},
		{
			name:     "order_preserved_across_batches",
			accs:     []string{"A1", "B2", "C3", "D4", "E5"},
			ceiling:  4,
			expected: []Key{"A1", "B2", "C3", "D4", "E5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.accs, tt.ceiling)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Plan(%v, %d) = %v, want %v", tt.accs, tt.ceiling, got, tt.expected)
			}
		})
	}
}

func TestPlanDefaultCeiling(t *testing.T) {
	// 300 accessions of 4 characters exceed the default ceiling once
	accs := make([]string, 300)
	for i := range accs {
		accs[i] = "ACGT"
	}

	got := Plan(accs, 0)
	want := Plan(accs, DefaultCeiling)

	if !reflect.DeepEqual(got, want) {
		t.Error("Plan with non-positive ceiling should fall back to DefaultCeiling")
	}
	if len(got) < 2 {
		t.Errorf("Expected multiple batches for 1200 accession characters, got %d", len(got))
	}
}

func TestPlanBatchesStayUnderCeiling(t *testing.T) {
	accs := []string{"AB000001", "CP000002", "MN908947", "NC000913", "AE014075"}

	for _, key := range Plan(accs, 20) {
		total := 0
		for _, acc := range key.Accessions() {
			total += len(acc)
		}
		if total >= 20 && len(key.Accessions()) > 1 {
			t.Errorf("Batch %q accumulates %d accession characters, want < 20", key, total)
		}
	}
}

func TestKeyAccessions(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected []string
	}{
		{"empty_key", "", nil},
		{"single", "AB000001", []string{"AB000001"}},
		{"multiple", "AB000001,CP000002,MN908947", []string{"AB000001", "CP000002", "MN908947"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.key.Accessions()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Accessions() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKeyEmpty(t *testing.T) {
	if !Key("").Empty() {
		t.Error("Expected empty key to report Empty")
	}
	if Key("AB000001").Empty() {
		t.Error("Expected non-empty key to not report Empty")
	}
}
