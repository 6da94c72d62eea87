package board

// Patch is a partial node record coming from the extraction service.
// Empty strings and nil groups mean "not extracted".
type Patch struct {
	Title        string
	Description  string
	Date         string
	Status       NodeStatus
	Person       *PersonFields
	Location     *LocationFields
	CustomFields []CustomField
}

// MergeExtracted folds p into the node. Scalar fields are replaced only by
// non-empty extracted values, typed groups are merged field by field, and
// custom fields are concatenated then de-duplicated by label keeping the
// first occurrence.
func (b *Board) MergeExtracted(id string, p Patch) bool {
	return b.UpdateNode(id, func(n *Node) {
		n.Title = pick(p.Title, n.Title)
		n.Description = pick(p.Description, n.Description)
		n.Date = pick(p.Date, n.Date)
		if p.Status != "" {
			n.Status = p.Status
		}
		if p.Person != nil {
			n.PersonFields = mergePerson(n.PersonFields, p.Person)
		}
		if p.Location != nil {
			n.LocationFields = mergeLocation(n.LocationFields, p.Location)
		}
		n.CustomFields = DedupeFields(append(append([]CustomField{}, n.CustomFields...), p.CustomFields...))
	})
}

func pick(extracted, current string) string {
	if extracted != "" {
		return extracted
	}
	return current
}

func mergePerson(cur, ext *PersonFields) *PersonFields {
	out := PersonFields{}
	if cur != nil {
		out = *cur
	}
	out.TaxID = pick(ext.TaxID, out.TaxID)
	out.BirthDate = pick(ext.BirthDate, out.BirthDate)
	out.Age = pick(ext.Age, out.Age)
	return &out
}

func mergeLocation(cur, ext *LocationFields) *LocationFields {
	out := LocationFields{}
	if cur != nil {
		out = *cur
	}
	out.PostalCode = pick(ext.PostalCode, out.PostalCode)
	out.State = pick(ext.State, out.State)
	out.City = pick(ext.City, out.City)
	out.Street = pick(ext.Street, out.Street)
	out.District = pick(ext.District, out.District)
	out.Complement = pick(ext.Complement, out.Complement)
	out.Number = pick(ext.Number, out.Number)
	return &out
}

// DedupeFields keeps the first field for each label, preserving order.
func DedupeFields(fields []CustomField) []CustomField {
	seen := make(map[string]bool, len(fields))
	out := make([]CustomField, 0, len(fields))
	for _, f := range fields {
		if seen[f.Label] {
			continue
		}
		seen[f.Label] = true
		out = append(out, f)
	}
	return out
}
