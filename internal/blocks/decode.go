// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blocks

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// envelope is the raw block document. Blocks must be present (not merely
// valid JSON) for a payload to count as structured.
type envelope struct {
	Blocks []rawBlock `json:"blocks"`
}

// rawBlock is the loosely typed wire form of a block, normalized into a
// typed variant by convert.
type rawBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text"`
	Title     string           `json:"title"`
	Items     []json.RawMessage `json:"items"`
	Data      []map[string]any `json:"data"`
	ChartType string           `json:"chartType"`
	Unit      string           `json:"unit"`
	Color     string           `json:"color"`
	Steps     []rawStep        `json:"steps"`
	Actions   []rawAction      `json:"actions"`
	CTA       *rawCTA          `json:"cta"`
}

type rawStep struct {
	Step   int    `json:"step"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

type rawAction struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Route    string `json:"route"`
	ActionID string `json:"action_id"`
	Method   string `json:"method"`
}

type rawCTA struct {
	Label string `json:"label"`
}

type rawMetric struct {
	Label  string `json:"label"`
	Value  any    `json:"value"`
	Change string `json:"change"`
}

type rawEvidence struct {
	Label string `json:"label"`
}

// =============================================================================
// DECODE
// =============================================================================

// Decode parses raw assistant text into typed content blocks. It returns
// (nil, false) when the text is not (or not yet) a structured block
// document; that is the expected answer for plain prose and for every
// intermediate state of a streaming JSON payload, so callers re-attempt on
// each new chunk.
//
// Three strategies are tried in order, first success wins:
//  1. parse the trimmed text directly as JSON
//  2. strip a leading ```json fence and trailing ``` fence, then parse
//  3. parse the substring from the first '{' to the last '}'
//
// A result is accepted only when it exposes a blocks array. Parse failures
// never escape; they just fall through to the next strategy.
func Decode(raw string) ([]Block, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if env, ok := tryParse(trimmed); ok {
		return convertAll(env.Blocks), true
	}

	if env, ok := tryParse(stripFences(trimmed)); ok {
		return convertAll(env.Blocks), true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		if env, ok := tryParse(trimmed[start : end+1]); ok {
			return convertAll(env.Blocks), true
		}
	}

	return nil, false
}

// LooksStructured reports whether raw content that failed to decode is
// probably a block document still arriving. Callers show a "generating
// visualization" placeholder instead of flashing half-formed JSON.
func LooksStructured(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "```json")
}

// tryParse attempts a strict JSON parse and requires a blocks field.
func tryParse(s string) (*envelope, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, false
	}
	if env.Blocks == nil {
		return nil, false
	}
	return &env, true
}

// stripFences removes a leading ```json (or bare ```) fence and a trailing
// ``` fence, tolerating their absence.
func stripFences(s string) string {
	out := s
	if strings.HasPrefix(out, "```json") {
		out = strings.TrimPrefix(out, "```json")
	} else if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```")
	}
	out = strings.TrimSpace(out)
	if strings.HasSuffix(out, "```") {
		out = strings.TrimSuffix(out, "```")
		out = strings.TrimSpace(out)
	}
	return out
}

// =============================================================================
// CONVERSION
// =============================================================================

// convertAll normalizes raw blocks into typed variants, dropping entries
// whose type is unrecognized.
func convertAll(raws []rawBlock) []Block {
	out := make([]Block, 0, len(raws))
	for _, rb := range raws {
		if b := convert(rb); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// convert maps one raw block to its typed variant, or nil for unknown types.
// Malformed entries inside items/data degrade individually; they never abort
// sibling blocks.
func convert(rb rawBlock) Block {
	switch Kind(rb.Type) {
	case KindSummary:
		return Summary{Text: rb.Text}

	case KindMetrics:
		items := make([]Metric, 0, len(rb.Items))
		for _, raw := range rb.Items {
			var rm rawMetric
			if err := json.Unmarshal(raw, &rm); err != nil {
				continue
			}
			items = append(items, Metric{
				Label:    rm.Label,
				Value:    stringifyValue(rm.Value),
				Change:   rm.Change,
				Negative: ChangeIsNegative(rm.Change),
			})
		}
		return Metrics{Items: items}

	case KindChart:
		xKey := InferAxisKey(rb.Data)
		points := make([]DataPoint, 0, len(rb.Data))
		for _, record := range rb.Data {
			value, ok := CoerceNumber(record["value"])
			if !ok {
				continue
			}
			points = append(points, DataPoint{
				Label: stringifyValue(record[xKey]),
				Value: value,
			})
		}
		return Chart{
			Title:  rb.Title,
			Type:   normalizeChartType(rb.ChartType),
			Unit:   rb.Unit,
			Color:  rb.Color,
			XKey:   xKey,
			Points: points,
		}

	case KindFlow:
		steps := make([]FlowStep, 0, len(rb.Steps))
		for _, rs := range rb.Steps {
			steps = append(steps, FlowStep{
				Step:   rs.Step,
				Label:  rs.Label,
				Status: StepStatus(rs.Status),
			})
		}
		return Flow{Title: rb.Title, Steps: steps}

	case KindRecommendation:
		return Recommendation{
			Title:   rb.Title,
			Text:    rb.Text,
			Actions: convertActions(rb.Actions),
		}

	case KindEvidence:
		items := make([]EvidenceItem, 0, len(rb.Items))
		for _, raw := range rb.Items {
			var re rawEvidence
			if err := json.Unmarshal(raw, &re); err != nil {
				continue
			}
			items = append(items, EvidenceItem{Label: re.Label})
		}
		return Evidence{Items: items}

	case KindRecommendedAction:
		var cta *CTA
		if rb.CTA != nil {
			cta = &CTA{Label: rb.CTA.Label}
		}
		return RecommendedAction{Title: rb.Title, Text: rb.Text, CTA: cta}

	default:
		// Forward compatibility: unknown block types are silently dropped.
		return nil
	}
}

func convertActions(raws []rawAction) []Action {
	if len(raws) == 0 {
		return nil
	}
	out := make([]Action, 0, len(raws))
	for _, ra := range raws {
		out = append(out, Action{
			Type:   ActionType(ra.Type),
			Label:  ra.Label,
			Route:  ra.Route,
			ID:     ra.ActionID,
			Method: ra.Method,
		})
	}
	return out
}
