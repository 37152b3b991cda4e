package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "number", value: Number(2.5), want: `2.5`},
		{name: "negative", value: Number(-45000), want: `-45000`},
		{name: "text", value: Text("n/a"), want: `"n/a"`},
		{name: "empty", value: Value{}, want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Value
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.value, back)
		})
	}
}

func TestValue_UnmarshalNull(t *testing.T) {
	v := Number(3)
	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.True(t, v.IsEmpty())
}

func TestStyling_HasBorder(t *testing.T) {
	s := &Styling{Border: "top bottom left right"}
	assert.True(t, s.HasBorder("top"))
	assert.True(t, s.HasBorder("right"))

	var nilStyling *Styling
	assert.False(t, nilStyling.HasBorder("top"))
	assert.False(t, (&Styling{Border: "bottom"}).HasBorder("top"))
}

func TestGridRow_Field(t *testing.T) {
	row := GridRow{
		Name:   "Revenue",
		Unit:   "Dollar",
		Source: "10-K",
		TagID:  "rev-1",
		Cells: map[string]Cell{
			"2024Q1": {Value: Number(12.5)},
		},
	}

	assert.Equal(t, "Revenue", row.Field(ColumnName).String())
	assert.Equal(t, "Dollar", row.Field(ColumnUnit).String())
	assert.Equal(t, "10-K", row.Field(ColumnSource).String())
	assert.Equal(t, "rev-1", row.Field(ColumnTagID).String())
	assert.Equal(t, 12.5, row.Field("2024Q1").Float())
	assert.True(t, row.Field("2024Q2").IsEmpty())
}

func TestPayload_Decode(t *testing.T) {
	raw := `{
		"success": true,
		"data": {
			"company": "Reddit",
			"ticker": "RDDT",
			"metrics": [{
				"section": {"name": "Income Statement", "order": 10, "styling": {"text_bold": true}, "empty_row_after": false},
				"category": {"name": "", "order": 0},
				"subcategory": {"name": "", "order": 0},
				"subsubcategory": {"name": "", "order": 0},
				"name": {"name": "Revenue", "order": 12},
				"unit": "Dollar",
				"source": {"value": "10-Q", "link": "https://example.com/q"},
				"tag_id": "rev",
				"values": [{"period": "2024Q1", "fiscal": "1Q24", "fiscal_date": "2024-03-31T00:00:00", "value": 243000000, "comment": null}]
			}]
		}
	}`

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.True(t, p.Success)
	require.True(t, p.Data.HasData())

	m := p.Data.Metrics[0]
	assert.Equal(t, HierarchyKey{Name: "Income Statement", Order: 10}, m.Section.Key())
	assert.Equal(t, float64(243000000), m.Values[0].Value)
	assert.Nil(t, m.Values[0].Comment)
	assert.Equal(t, "https://example.com/q", m.Source.Link)
}
