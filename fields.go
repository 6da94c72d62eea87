package main

import (
	"errors"
	"slices"
	"strings"

	"casewall/internal/board"
)

// Keys of the typed field groups, as typed into the field prompt.
var (
	personFieldKeys = map[string]func(*board.PersonFields) *string{
		"cpf": func(f *board.PersonFields) *string { return &f.TaxID },
		"dob": func(f *board.PersonFields) *string { return &f.BirthDate },
		"age": func(f *board.PersonFields) *string { return &f.Age },
	}
	locationFieldKeys = map[string]func(*board.LocationFields) *string{
		"cep":        func(f *board.LocationFields) *string { return &f.PostalCode },
		"state":      func(f *board.LocationFields) *string { return &f.State },
		"city":       func(f *board.LocationFields) *string { return &f.City },
		"street":     func(f *board.LocationFields) *string { return &f.Street },
		"district":   func(f *board.LocationFields) *string { return &f.District },
		"complement": func(f *board.LocationFields) *string { return &f.Complement },
		"number":     func(f *board.LocationFields) *string { return &f.Number },
	}
)

var errFieldSyntax = errors.New("write the field as label: value")

// parseField splits "label: value". An empty value is allowed and clears
// the field.
func parseField(s string) (label, value string, err error) {
	label, value, ok := strings.Cut(s, ":")
	label = strings.TrimSpace(label)
	if !ok || label == "" {
		return "", "", errFieldSyntax
	}
	return label, strings.TrimSpace(value), nil
}

// setField stores value under label on a node. Person and location
// records route their typed keys to the field group; any other label is a
// custom field, appended when new and removed when value is empty.
func setField(b *board.Board, id, label, value string) bool {
	n, ok := b.Case().Node(id)
	if !ok {
		return false
	}
	key := strings.ToLower(label)
	switch n.Type {
	case board.TypePerson:
		if field, ok := personFieldKeys[key]; ok {
			return b.UpdatePersonFields(id, func(pf *board.PersonFields) { *field(pf) = value })
		}
	case board.TypeLocation:
		if field, ok := locationFieldKeys[key]; ok {
			return b.UpdateLocationFields(id, func(lf *board.LocationFields) { *field(lf) = value })
		}
	}

	count := len(n.CustomFields)
	i := slices.IndexFunc(n.CustomFields, func(f board.CustomField) bool {
		return strings.EqualFold(f.Label, label)
	})
	switch {
	case i >= 0 && value == "":
		return b.RemoveCustomField(id, i)
	case i >= 0:
		return b.UpdateCustomField(id, i, board.CustomField{Label: n.CustomFields[i].Label, Value: value})
	case value == "":
		return false
	default:
		return b.AddCustomField(id) &&
			b.UpdateCustomField(id, count, board.CustomField{Label: label, Value: value})
	}
}

// parseCategory reads "Name [Icon]". The icon is taken from the last word
// when it names one of board.CategoryIcons; otherwise icons are handed
// out in order.
func parseCategory(s string, existing int) (name, icon string) {
	name = strings.TrimSpace(s)
	icon = board.CategoryIcons[existing%len(board.CategoryIcons)]
	if i := strings.LastIndexByte(name, ' '); i > 0 {
		last := name[i+1:]
		for _, ic := range board.CategoryIcons {
			if strings.EqualFold(ic, last) {
				return strings.TrimSpace(name[:i]), ic
			}
		}
	}
	return name, icon
}

// categoryColor picks the colour of the nth custom category.
func categoryColor(existing int) string {
	return board.RibbonColors[existing%len(board.RibbonColors)].Color
}

// newNodeTypes is what 't' cycles through: the built-in kinds, then the
// case's custom categories.
func newNodeTypes(c *board.Case) []board.NodeType {
	types := slices.Clone(board.BuiltinTypes)
	if c == nil {
		return types
	}
	for _, cat := range c.Categories {
		types = append(types, board.NodeType(cat.ID))
	}
	return types
}
