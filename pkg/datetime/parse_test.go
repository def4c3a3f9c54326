package datetime

import (
	"testing"
)

func TestMustParseTime(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		dateStr  string
		expected string
	}{
		{
			name:     "Valid date",
			layout:   DateTimeLayout,
			dateStr:  "2025-01",
			expected: "2025-01",
		},
		{
			name:     "Another valid date",
			layout:   DateTimeLayout,
			dateStr:  "2030-12",
			expected: "2030-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseTime(tt.layout, tt.dateStr)
			if result.Format(tt.layout) != tt.expected {
				t.Errorf("MustParseTime() = %s, expected %s", result.Format(tt.layout), tt.expected)
			}
		})
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateTimeLayout, "invalid-date")
}

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		months   int
		expected string
		wantErr  bool
	}{
		{"Add one month", "2025-01", 1, "2025-02", false},
		{"Cross year boundary", "2025-12", 1, "2026-01", false},
		{"Add multiple years", "2025-01", 36, "2028-01", false},
		{"Negative offset", "2025-03", -3, "2024-12", false},
		{"Invalid date", "2025-13", 1, "2025-13", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, DateTimeLayout, tt.months)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestMonthLabels(t *testing.T) {
	labels, err := MonthLabels("2025-11", 3)
	if err != nil {
		t.Fatalf("MonthLabels() unexpected error: %v", err)
	}
	expected := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	if len(labels) != len(expected) {
		t.Fatalf("len(labels) = %d, expected %d", len(labels), len(expected))
	}
	for i := range expected {
		if labels[i] != expected[i] {
			t.Errorf("labels[%d] = %s, expected %s", i, labels[i], expected[i])
		}
	}

	indexed, err := MonthLabels("", 2)
	if err != nil {
		t.Fatalf("MonthLabels() unexpected error: %v", err)
	}
	if indexed[0] != "M0" || indexed[2] != "M2" {
		t.Errorf("index labels = %v", indexed)
	}

	if _, err := MonthLabels("not-a-date", 2); err == nil {
		t.Error("expected error for invalid start date")
	}
	if _, err := MonthLabels("2025-01", -1); err == nil {
		t.Error("expected error for negative count")
	}
}
