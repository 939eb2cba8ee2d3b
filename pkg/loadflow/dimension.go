package loadflow

import "fmt"

// Dimension identifies one of the catalog tables employees reference.
// All dimensions share the same shape (id, name, created_at) and are never
// cross-resolved: a name in one dimension says nothing about another.
type Dimension int

const (
	DimensionAgency Dimension = iota
	DimensionProfession
	DimensionEthnicity
	DimensionGender
)

// Dimensions lists every dimension in load order. Catalog loading runs in
// this order before any employee row is ingested.
var Dimensions = []Dimension{
	DimensionAgency,
	DimensionProfession,
	DimensionEthnicity,
	DimensionGender,
}

type dimensionBinding struct {
	name   string
	table  string
	column string
}

// dimensionBindings maps each dimension to its target table and the source
// column its names are read from, in both the catalog and employee files.
var dimensionBindings = map[Dimension]dimensionBinding{
	DimensionAgency:     {name: "Agency", table: "agency", column: "agency_name"},
	DimensionProfession: {name: "Profession", table: "profession", column: "class_title"},
	DimensionEthnicity:  {name: "Ethnicity", table: "ethnicity", column: "ethnicity"},
	DimensionGender:     {name: "Gender", table: "gender", column: "gender"},
}

// String returns a human-readable name for the dimension.
func (d Dimension) String() string {
	if b, ok := dimensionBindings[d]; ok {
		return b.name
	}
	return fmt.Sprintf("Unknown(%d)", int(d))
}

// Table returns the name of the table holding the dimension's rows.
func (d Dimension) Table() string {
	return dimensionBindings[d].table
}

// SourceColumn returns the source column holding the dimension's names.
func (d Dimension) SourceColumn() string {
	return dimensionBindings[d].column
}

// IsValid returns true if the Dimension is a defined value.
func (d Dimension) IsValid() bool {
	_, ok := dimensionBindings[d]
	return ok
}
