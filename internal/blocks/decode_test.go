// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainDoc = `{"blocks":[{"type":"summary","text":"All clear."}]}`

func TestDecodePlainJSON(t *testing.T) {
	out, ok := Decode(plainDoc)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, Summary{Text: "All clear."}, out[0])
}

func TestDecodeFencedJSON(t *testing.T) {
	fenced := "```json\n" + plainDoc + "\n```"
	out, ok := Decode(fenced)
	require.True(t, ok)
	require.Len(t, out, 1)
}

func TestDecodeEmbeddedJSON(t *testing.T) {
	wrapped := "Here is the analysis:\n" + plainDoc + "\nLet me know."
	out, ok := Decode(wrapped)
	require.True(t, ok)
	require.Len(t, out, 1)
}

func TestDecodeStrategyOrder(t *testing.T) {
	// A fenced document also contains '{'...'}', so strategy 2 must win
	// before strategy 3 gets a chance to parse the same substring.
	fenced := "```json\n" + plainDoc + "\n```"
	out, ok := Decode(fenced)
	require.True(t, ok)
	assert.Len(t, out, 1)
}

func TestDecodeProseReturnsFalse(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"Just a normal sentence about revenue.",
		"Use the {braces} figure of speech, not JSON.",
	} {
		out, ok := Decode(raw)
		assert.False(t, ok, "input %q", raw)
		assert.Nil(t, out)
	}
}

func TestDecodePartialStreamReturnsFalse(t *testing.T) {
	// Every prefix of a streaming block document must decode to not-ready,
	// never to an error or a half-formed result.
	for i := 1; i < len(plainDoc)-1; i++ {
		_, ok := Decode(plainDoc[:i])
		assert.False(t, ok, "prefix %q should not decode", plainDoc[:i])
	}
}

func TestDecodeRequiresBlocksField(t *testing.T) {
	_, ok := Decode(`{"result":"fine"}`)
	assert.False(t, ok, "valid JSON without blocks is not structured content")

	out, ok := Decode(`{"blocks":[]}`)
	require.True(t, ok, "empty blocks array is still a block document")
	assert.Empty(t, out)
}

func TestDecodeUnknownTypesDropped(t *testing.T) {
	doc := `{"blocks":[
		{"type":"summary","text":"keep"},
		{"type":"hologram","text":"future"},
		{"type":"metrics","items":[{"label":"ARR","value":"$1.2M","change":"+4%"}]}
	]}`
	out, ok := Decode(doc)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Equal(t, KindSummary, out[0].Kind())
	assert.Equal(t, KindMetrics, out[1].Kind())
}

func TestDecodeMetrics(t *testing.T) {
	doc := `{"blocks":[{"type":"metrics","items":[
		{"label":"Revenue","value":1250000,"change":"+12%"},
		{"label":"Churn","value":"3.1%","change":"-0.4%"},
		{"label":"NPS","value":62,"change":"down 3"},
		"not an object"
	]}]}`
	out, ok := Decode(doc)
	require.True(t, ok)
	require.Len(t, out, 1)

	m := out[0].(Metrics)
	require.Len(t, m.Items, 3, "malformed item is skipped, siblings survive")
	assert.Equal(t, "1250000", m.Items[0].Value)
	assert.False(t, m.Items[0].Negative)
	assert.True(t, m.Items[1].Negative)
	assert.True(t, m.Items[2].Negative, "the word down marks a decline")
}

func TestDecodeChart(t *testing.T) {
	doc := `{"blocks":[{"type":"chart","title":"Pipeline","chartType":"bar",
		"unit":"$","color":"emerald","data":[
			{"date":"Jan","value":"$1,234"},
			{"date":"Feb","value":2000},
			{"date":"Mar","value":"n/a"}
		]}]}`
	out, ok := Decode(doc)
	require.True(t, ok)

	c := out[0].(Chart)
	assert.Equal(t, ChartBar, c.Type)
	assert.Equal(t, "date", c.XKey)
	require.Len(t, c.Points, 2, "uncoercible values drop the point only")
	assert.Equal(t, DataPoint{Label: "Jan", Value: 1234}, c.Points[0])
	assert.Equal(t, DataPoint{Label: "Feb", Value: 2000}, c.Points[1])
}

func TestDecodeChartDefaults(t *testing.T) {
	doc := `{"blocks":[{"type":"chart","title":"Trend","data":[{"name":"Q1","value":5}]}]}`
	out, ok := Decode(doc)
	require.True(t, ok)

	c := out[0].(Chart)
	assert.Equal(t, ChartArea, c.Type, "missing chartType defaults to area")
	assert.Equal(t, "name", c.XKey)
	assert.Empty(t, c.Color)
}

func TestDecodeFlow(t *testing.T) {
	doc := `{"blocks":[{"type":"flow","title":"Onboarding","steps":[
		{"step":1,"label":"Sign","status":"completed"},
		{"step":2,"label":"Provision","status":"current"},
		{"step":3,"label":"Launch","status":"pending"}
	]}]}`
	out, ok := Decode(doc)
	require.True(t, ok)

	f := out[0].(Flow)
	require.Len(t, f.Steps, 3)
	assert.Equal(t, StepCompleted, f.Steps[0].Status)
	assert.Equal(t, StepCurrent, f.Steps[1].Status)
	assert.Equal(t, StepPending, f.Steps[2].Status)
}

func TestDecodeRecommendationActions(t *testing.T) {
	doc := `{"blocks":[{"type":"recommendation","title":"Renew early",
		"text":"Lock the discount now.","actions":[
			{"type":"navigation","label":"Open contracts","route":"/contracts"},
			{"type":"api","label":"Approve","action_id":"apr-9","method":"POST"}
		]}]}`
	out, ok := Decode(doc)
	require.True(t, ok)

	r := out[0].(Recommendation)
	require.Len(t, r.Actions, 2)
	assert.Equal(t, ActionNavigation, r.Actions[0].Type)
	assert.Equal(t, "/contracts", r.Actions[0].Route)
	assert.Equal(t, ActionAPI, r.Actions[1].Type)
	assert.Equal(t, "apr-9", r.Actions[1].ID)
}

func TestDecodeEvidenceAndRecommendedAction(t *testing.T) {
	doc := `{"blocks":[
		{"type":"evidence","items":[{"label":"Q2 ledger"},{"label":"CRM export"}]},
		{"type":"recommended_action","title":"Escalate","text":"Loop in finance.","cta":{"label":"Do it"}},
		{"type":"recommended_action","title":"Wait","text":"No CTA here."}
	]}`
	out, ok := Decode(doc)
	require.True(t, ok)
	require.Len(t, out, 3)

	ev := out[0].(Evidence)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "Q2 ledger", ev.Items[0].Label)

	ra := out[1].(RecommendedAction)
	require.NotNil(t, ra.CTA)
	assert.Equal(t, "Do it", ra.CTA.Label)

	assert.Nil(t, out[2].(RecommendedAction).CTA)
}

func TestLooksStructured(t *testing.T) {
	assert.True(t, LooksStructured(`{"blocks":[`))
	assert.True(t, LooksStructured("```json\n{"))
	assert.True(t, LooksStructured("  {\"blocks\""))
	assert.False(t, LooksStructured("Revenue is up."))
	assert.False(t, LooksStructured("```python\nprint(1)"))
}
