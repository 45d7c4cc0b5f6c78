// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blocks

import (
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// VALUE COERCION
// =============================================================================

// CoerceNumber converts a chart data value to a float64. Strings are
// stripped of every character that is not a digit, '.', or '-' before
// parsing, so "$1,234" coerces to 1234. Already-numeric values pass through
// unchanged. Returns false for values that cannot be coerced.
func CoerceNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		cleaned := stripNonNumeric(val)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stringifyValue renders an arbitrary JSON scalar as display text.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// Integral floats print without a decimal point.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// =============================================================================
// AXIS INFERENCE
// =============================================================================

// axisPreference is the fixed X-axis key preference order.
var axisPreference = []string{"ts", "date", "name", "label", "month"}

// DefaultAxisKey is used when no preferred key is present in the data.
const DefaultAxisKey = "name"

// InferAxisKey detects the X-axis key from the first data record: the first
// key in the preference order that the record contains, defaulting to
// "name".
func InferAxisKey(data []map[string]any) string {
	if len(data) == 0 {
		return DefaultAxisKey
	}
	first := data[0]
	for _, key := range axisPreference {
		if _, ok := first[key]; ok {
			return key
		}
	}
	return DefaultAxisKey
}

// =============================================================================
// CHANGE POLARITY
// =============================================================================

// ChangeIsNegative classifies a metric change string: negative when it
// contains "-" or the word "down" (case-insensitive), positive otherwise.
func ChangeIsNegative(change string) bool {
	if strings.Contains(change, "-") {
		return true
	}
	return strings.Contains(strings.ToLower(change), "down")
}

// =============================================================================
// CHART TYPE AND PALETTE
// =============================================================================

// normalizeChartType maps the wire chartType to a variant, defaulting to
// area semantics when absent or unrecognized.
func normalizeChartType(s string) ChartType {
	switch ChartType(strings.ToLower(s)) {
	case ChartBar:
		return ChartBar
	case ChartPie:
		return ChartPie
	default:
		return ChartArea
	}
}

// palette maps color tags to hex values. The order of PaletteTags doubles as
// the cycling order for pie slices.
var palette = map[string]string{
	"rose":    "#f43f5e",
	"emerald": "#10b981",
	"indigo":  "#6366f1",
	"amber":   "#f59e0b",
	"slate":   "#64748b",
}

// PaletteTags is the fixed palette cycling order.
var PaletteTags = []string{"rose", "emerald", "indigo", "amber", "slate"}

// DefaultColorTag is the standard accent used when a chart has no color tag.
const DefaultColorTag = "indigo"

// ColorHex resolves a palette tag to its hex value, falling back to the
// default accent for unknown tags.
func ColorHex(tag string) string {
	if hex, ok := palette[tag]; ok {
		return hex
	}
	return palette[DefaultColorTag]
}

// PaletteHex returns the hex value at a cycling palette index.
func PaletteHex(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[PaletteTags[i%len(PaletteTags)]]
}
