package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// A schema is a pointer to a struct prototype carrying `validate` constraint
// tags and `json` field names. The same prototype pointer may be shared by
// any number of routes; it is compiled into a Checker exactly once.

// Checker is a compiled schema: it decodes raw request data into a fresh
// instance of the prototype type and reports constraint violations in the
// order the validator emits them.
type Checker struct {
	validate *validator.Validate
	typ      reflect.Type
}

// Check reports whether the value satisfies the schema constraints.
func (c *Checker) Check(v any) bool {
	return c.validate.Struct(v) == nil
}

// Errors returns the ordered constraint violations for the value, or nil if
// it is valid.
func (c *Checker) Errors(v any) []FieldError {
	return c.fieldErrors(c.validate.Struct(v))
}

// DecodeJSON unmarshals JSON into a fresh instance of the schema type and
// validates it. On failure the instance is discarded and the violations are
// returned.
func (c *Checker) DecodeJSON(data []byte) (any, []FieldError) {
	v := reflect.New(c.typ).Interface()
	if err := json.Unmarshal(data, v); err != nil {
		return nil, []FieldError{{Message: fmt.Sprintf("invalid JSON: %s", err)}}
	}
	if errs := c.Errors(v); errs != nil {
		return nil, errs
	}
	return v, nil
}

// DecodeStrings populates a fresh instance of the schema type from a string
// map (path parameters or query values) and validates it. Fields are matched
// by json tag, falling back to the field name.
func (c *Checker) DecodeStrings(values map[string]string) (any, []FieldError) {
	v := reflect.New(c.typ)
	if errs := populateFromStrings(v.Elem(), values); errs != nil {
		return nil, errs
	}
	out := v.Interface()
	if errs := c.Errors(out); errs != nil {
		return nil, errs
	}
	return out, nil
}

func (c *Checker) fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Path:    fieldPath(fe),
			Message: constraintMessage(fe),
		})
	}
	return out
}

// fieldPath strips the root struct name from the validator's namespace,
// leaving the json-tagged path within the value.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func constraintMessage(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed on the '%s=%s' constraint", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' constraint", fe.Tag())
}

// schemaCache compiles schemas at most once, keyed by prototype pointer
// identity. Two structurally identical but distinct prototypes compile
// separately; identity keying avoids deep-equality hashing and is cheap
// because compilation happens only at registration time.
type schemaCache struct {
	validate *validator.Validate
	checkers map[any]*Checker
}

func newSchemaCache() *schemaCache {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field paths by json tag so violations reference wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if tag == "-" {
			return ""
		}
		return tag
	})
	return &schemaCache{
		validate: v,
		checkers: make(map[any]*Checker),
	}
}

// compile returns the checker for the schema, compiling it on first use.
// Panics if the schema is not a pointer to a struct.
func (sc *schemaCache) compile(schema any) *Checker {
	if checker, ok := sc.checkers[schema]; ok {
		return checker
	}
	t := reflect.TypeOf(schema)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("velo: schema must be a pointer to a struct, got %T", schema))
	}
	checker := &Checker{validate: sc.validate, typ: t.Elem()}
	sc.checkers[schema] = checker
	return checker
}

// populateFromStrings fills struct fields from a string map. Scalar field
// kinds and pointers to them are supported; parse failures are reported
// against the field's wire name.
func populateFromStrings(v reflect.Value, values map[string]string) []FieldError {
	t := v.Type()
	var errs []FieldError
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" {
			name = field.Name
		}
		raw, ok := values[name]
		if !ok || raw == "" {
			continue
		}
		target := fv
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			target = fv.Elem()
		}
		if err := setScalarField(target, raw); err != nil {
			errs = append(errs, FieldError{Path: name, Message: err.Error()})
		}
	}
	return errs
}

func setScalarField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
