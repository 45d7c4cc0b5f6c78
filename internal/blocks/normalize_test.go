// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float passthrough", 42.5, 42.5, true},
		{"int passthrough", 7, 7, true},
		{"plain string", "123", 123, true},
		{"currency string", "$1,234", 1234, true},
		{"percent string", "3.1%", 3.1, true},
		{"negative string", "-12", -12, true},
		{"no digits", "n/a", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"object", map[string]any{"v": 1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCoerceNumberIdempotent(t *testing.T) {
	// Coercing an already-coerced value changes nothing.
	first, ok := CoerceNumber("$1,234.50")
	assert.True(t, ok)
	second, ok := CoerceNumber(first)
	assert.True(t, ok)
	assert.Equal(t, first, second)
}

func TestInferAxisKey(t *testing.T) {
	tests := []struct {
		name string
		data []map[string]any
		want string
	}{
		{"empty", nil, "name"},
		{"date", []map[string]any{{"date": "Jan", "value": 1}}, "date"},
		{"ts beats date", []map[string]any{{"ts": 1, "date": "Jan"}}, "ts"},
		{"label", []map[string]any{{"label": "a", "value": 2}}, "label"},
		{"month", []map[string]any{{"month": "May", "value": 3}}, "month"},
		{"fallback", []map[string]any{{"region": "EU", "value": 4}}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferAxisKey(tt.data))
		})
	}
}

func TestChangeIsNegative(t *testing.T) {
	assert.True(t, ChangeIsNegative("-4%"))
	assert.True(t, ChangeIsNegative("down 2 points"))
	assert.True(t, ChangeIsNegative("Down"))
	assert.False(t, ChangeIsNegative("+4%"))
	assert.False(t, ChangeIsNegative("flat"))
	assert.False(t, ChangeIsNegative(""))
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#f43f5e", ColorHex("rose"))
	assert.Equal(t, "#10b981", ColorHex("emerald"))
	assert.Equal(t, "#6366f1", ColorHex("indigo"))
	assert.Equal(t, "#f59e0b", ColorHex("amber"))
	assert.Equal(t, "#6366f1", ColorHex(""), "unknown tags fall back to indigo")
	assert.Equal(t, "#6366f1", ColorHex("chartreuse"))
}

func TestPaletteHexCycles(t *testing.T) {
	assert.Equal(t, ColorHex("rose"), PaletteHex(0))
	assert.Equal(t, PaletteHex(0), PaletteHex(len(PaletteTags)))
}

func TestNormalizeChartType(t *testing.T) {
	assert.Equal(t, ChartBar, normalizeChartType("bar"))
	assert.Equal(t, ChartPie, normalizeChartType("PIE"))
	assert.Equal(t, ChartArea, normalizeChartType(""))
	assert.Equal(t, ChartArea, normalizeChartType("scatter"))
}

func TestStringifyValue(t *testing.T) {
	assert.Equal(t, "hello", stringifyValue("hello"))
	assert.Equal(t, "1250000", stringifyValue(1250000.0))
	assert.Equal(t, "3.14", stringifyValue(3.14))
	assert.Equal(t, "true", stringifyValue(true))
	assert.Equal(t, "", stringifyValue(nil))
}
