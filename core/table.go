package core

// DType identifies the physical element type of a column.
type DType int

const (
	Int8 DType = iota
	Int16
	Int32
	Int64
	Float32
	Float64
	Bool
	String
)

var dtypeNames = map[DType]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool",
	String:  "string",
}

func (t DType) String() string {
	if name, ok := dtypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ByteWidth returns the per-element width in bytes of a fixed-width
// type, or 0 for variable-length types.
func (t DType) ByteWidth() int {
	switch t {
	case Int8, Bool:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// FixedWidth reports whether elements of this type occupy a fixed
// number of bytes in the column's data buffer.
func (t DType) FixedWidth() bool {
	return t.ByteWidth() > 0
}

// ParseDType maps a type name back to its DType. The inverse of String.
func ParseDType(name string) (DType, bool) {
	for t, n := range dtypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Field describes one named, typed column slot in a schema.
type Field struct {
	Name     string `json:"name"`
	Type     DType  `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
}

// Schema names and types the columns of a table. Field order matches
// column order.
type Schema struct {
	Fields []Field `json:"fields"`
}

// NumFields returns the number of fields in the schema.
func (s Schema) NumFields() int {
	return len(s.Fields)
}

// FieldNames returns the field names in column order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
