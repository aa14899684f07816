package gds

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IndexType selects whether an index covers vertices or edges.
type IndexType string

const (
	IndexTypeVertex IndexType = "vertex"
	IndexTypeEdge   IndexType = "edge"
)

// DataType is the value type of a property key.
type DataType string

const (
	DataTypeString  DataType = "String"
	DataTypeInteger DataType = "Integer"
	DataTypeFloat   DataType = "Float"
	DataTypeBoolean DataType = "Boolean"
)

// Cardinality bounds how many values a property key may hold per element.
type Cardinality string

const (
	CardinalitySingle Cardinality = "SINGLE"
	CardinalityList   Cardinality = "LIST"
	CardinalitySet    Cardinality = "SET"
)

// Multiplicity constrains edges of a label between two vertices.
type Multiplicity string

const (
	MultiplicityMulti    Multiplicity = "MULTI"
	MultiplicitySimple   Multiplicity = "SIMPLE"
	MultiplicityMany2One Multiplicity = "MANY2ONE"
	MultiplicityOne2Many Multiplicity = "ONE2MANY"
	MultiplicityOne2One  Multiplicity = "ONE2ONE"
)

// PropertyKey declares a named, typed property.
type PropertyKey struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	DataType    DataType    `json:"dataType" yaml:"dataType" validate:"required,oneof=String Integer Float Boolean"`
	Cardinality Cardinality `json:"cardinality" yaml:"cardinality" validate:"required,oneof=SINGLE LIST SET"`
}

// IndexDefinition is the body of POST /index.
type IndexDefinition struct {
	Type         IndexType         `json:"type" yaml:"type" validate:"required,oneof=vertex edge"`
	PropertyKeys []PropertyKey     `json:"propertyKeys" yaml:"propertyKeys" validate:"required,min=1,dive"`
	IndexOnly    map[string]string `json:"indexOnly,omitempty" yaml:"indexOnly,omitempty"`
	Composite    bool              `json:"composite" yaml:"composite"`
	Name         string            `json:"name" yaml:"name" validate:"required"`
}

// Validate checks required fields and enumerated values.
func (d IndexDefinition) Validate() error {
	return validateStruct("create index", d)
}

// VertexLabel declares a vertex label.
type VertexLabel struct {
	Name string `json:"name" yaml:"name" validate:"required"`
}

// EdgeLabel declares an edge label and its multiplicity.
type EdgeLabel struct {
	Name         string       `json:"name" yaml:"name" validate:"required"`
	Multiplicity Multiplicity `json:"multiplicity,omitempty" yaml:"multiplicity,omitempty" validate:"omitempty,oneof=MULTI SIMPLE MANY2ONE ONE2MANY ONE2ONE"`
}

// SchemaIndex is an index declared inside a schema. Property keys are
// referenced by name.
type SchemaIndex struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	PropertyKeys []string `json:"propertyKeys" yaml:"propertyKeys" validate:"required,min=1,dive,required"`
	Composite    bool     `json:"composite" yaml:"composite"`
	Unique       bool     `json:"unique" yaml:"unique"`
	IndexOnly    string   `json:"indexOnly,omitempty" yaml:"indexOnly,omitempty"`
}

// SchemaDefinition is the body of POST /schema and the element type of the
// GET /schema result. Slices keep their order on the wire.
type SchemaDefinition struct {
	EdgeIndexes   []SchemaIndex `json:"edgeIndexes" yaml:"edgeIndexes" validate:"dive"`
	EdgeLabels    []EdgeLabel   `json:"edgeLabels" yaml:"edgeLabels" validate:"dive"`
	PropertyKeys  []PropertyKey `json:"propertyKeys" yaml:"propertyKeys" validate:"dive"`
	VertexIndexes []SchemaIndex `json:"vertexIndexes" yaml:"vertexIndexes" validate:"dive"`
	VertexLabels  []VertexLabel `json:"vertexLabels" yaml:"vertexLabels" validate:"dive"`
}

// Validate checks required fields and enumerated values of every element.
func (s SchemaDefinition) Validate() error {
	return validateStruct("set schema", s)
}

// MarshalJSON always emits the five arrays, never null.
func (s SchemaDefinition) MarshalJSON() ([]byte, error) {
	type plain SchemaDefinition
	out := plain(s.normalized())
	return json.Marshal(out)
}

// Equal reports whether two schemas declare the same elements in the same
// order. Nil and empty arrays compare equal.
func (s SchemaDefinition) Equal(o SchemaDefinition) bool {
	return reflect.DeepEqual(s.normalized(), o.normalized())
}

// Contains reports whether every element declared in o is also declared,
// unchanged, in s. Order and elements only s declares are ignored.
func (s SchemaDefinition) Contains(o SchemaDefinition) bool {
	return containsAll(s.EdgeIndexes, o.EdgeIndexes) &&
		containsAll(s.EdgeLabels, o.EdgeLabels) &&
		containsAll(s.PropertyKeys, o.PropertyKeys) &&
		containsAll(s.VertexIndexes, o.VertexIndexes) &&
		containsAll(s.VertexLabels, o.VertexLabels)
}

func containsAll[T any](have, want []T) bool {
	for _, w := range want {
		if !slices.ContainsFunc(have, func(h T) bool { return reflect.DeepEqual(h, w) }) {
			return false
		}
	}
	return true
}

func (s SchemaDefinition) normalized() SchemaDefinition {
	if s.EdgeIndexes == nil {
		s.EdgeIndexes = []SchemaIndex{}
	}
	if s.EdgeLabels == nil {
		s.EdgeLabels = []EdgeLabel{}
	}
	if s.PropertyKeys == nil {
		s.PropertyKeys = []PropertyKey{}
	}
	if s.VertexIndexes == nil {
		s.VertexIndexes = []SchemaIndex{}
	}
	if s.VertexLabels == nil {
		s.VertexLabels = []VertexLabel{}
	}
	return s
}

// Object is an untyped JSON object returned by the index endpoints.
type Object map[string]any

// Status describes the status block of an Envelope.
type Status struct {
	Message    string         `json:"message"`
	Code       int            `json:"code"`
	Attributes map[string]any `json:"attributes"`
}

// Result holds the payload of an Envelope.
type Result[T any] struct {
	Data T              `json:"data"`
	Meta map[string]any `json:"meta"`
}

// Envelope is the service's standard response wrapper.
type Envelope[T any] struct {
	RequestID string    `json:"requestId"`
	Status    Status    `json:"status"`
	Result    Result[T] `json:"result"`
}

// SchemaEnvelope is the response of both schema operations.
type SchemaEnvelope Envelope[[]SchemaDefinition]

// Applied returns result.data[0], the schema the service holds after a set.
func (e *SchemaEnvelope) Applied() (SchemaDefinition, bool) {
	if e == nil || len(e.Result.Data) == 0 {
		return SchemaDefinition{}, false
	}
	return e.Result.Data[0], true
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func validateStruct(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Op: op, Err: err}
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[trimNamespace(fe.Namespace())] = validationMessage(fe)
	}
	return &ValidationError{Op: op, Details: details, Err: err}
}

// trimNamespace drops the root struct name from "IndexDefinition.propertyKeys[0].name".
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s element(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}
