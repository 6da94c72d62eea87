package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casewall/internal/board"
	"casewall/internal/geom"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in           string
		label, value string
		wantErr      bool
	}{
		{"age: 41", "age", "41", false},
		{"  Placa :  ABC-1234 ", "Placa", "ABC-1234", false},
		{"url: http://x.test:80", "url", "http://x.test:80", false},
		{"Placa:", "Placa", "", false},
		{": 41", "", "", true},
		{"41", "", "", true},
	}
	for _, tt := range tests {
		label, value, err := parseField(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, errFieldSyntax, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.label, label, tt.in)
		assert.Equal(t, tt.value, value, tt.in)
	}
}

func TestSetFieldLocation(t *testing.T) {
	_, b := testCase(t)
	n := b.AddNode(board.TypeLocation, geom.Model(0, 0))

	assert.True(t, setField(b, n.ID, "City", "Santos"))
	assert.True(t, setField(b, n.ID, "street", "Rua do Porto"))
	// age is only typed on people
	assert.True(t, setField(b, n.ID, "age", "old"))

	got, _ := b.Case().Node(n.ID)
	require.NotNil(t, got.LocationFields)
	assert.Equal(t, "Santos", got.LocationFields.City)
	assert.Equal(t, "Rua do Porto", got.LocationFields.Street)
	assert.Nil(t, got.PersonFields)
	assert.Equal(t, []board.CustomField{{Label: "age", Value: "old"}}, got.CustomFields)

	assert.True(t, setField(b, n.ID, "AGE", "older"))
	got, _ = b.Case().Node(n.ID)
	assert.Equal(t, []board.CustomField{{Label: "age", Value: "older"}}, got.CustomFields)

	assert.False(t, setField(b, n.ID, "missing", ""))
	assert.False(t, setField(b, "node-404", "city", "x"))
}

func TestParseCategory(t *testing.T) {
	name, icon := parseCategory("Vehicle truck", 0)
	assert.Equal(t, "Vehicle", name)
	assert.Equal(t, "Truck", icon)

	name, icon = parseCategory("Bank account", 1)
	assert.Equal(t, "Bank account", name)
	assert.Equal(t, board.CategoryIcons[1], icon)

	_, icon = parseCategory("Phone", len(board.CategoryIcons))
	assert.Equal(t, board.CategoryIcons[0], icon)
}

func TestNewNodeTypes(t *testing.T) {
	assert.Equal(t, board.BuiltinTypes, newNodeTypes(nil))

	c, b := testCase(t)
	cat, ok := b.AddCategory("Vehicle", "Car", categoryColor(0))
	require.True(t, ok)
	types := newNodeTypes(c)
	require.Len(t, types, len(board.BuiltinTypes)+1)
	assert.Equal(t, board.NodeType(cat.ID), types[len(types)-1])
}
