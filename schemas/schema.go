// Package schemas derives response schemas for structured generation from
// the Go types the response is decoded into, so the declared shape and the
// parsed shape cannot drift apart.
package schemas

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"google.golang.org/genai"
)

var cache sync.Map // reflect.Type -> *genai.Schema

// For returns the schema of v's type. v is typically a zero value such as
// models.WorkoutRoutine{} or []models.DietPlan{}.
func For(v any) (*genai.Schema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("schemas: nil value")
	}
	if s, ok := cache.Load(t); ok {
		return s.(*genai.Schema), nil
	}
	s, err := generateSchemaForType(t)
	if err != nil {
		return nil, err
	}
	cache.Store(t, s)
	return s, nil
}

// MustFor is For for package-level declarations.
func MustFor(v any) *genai.Schema {
	s, err := For(v)
	if err != nil {
		panic(err)
	}
	return s
}

func generateSchemaForType(t reflect.Type) (*genai.Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &genai.Schema{Type: genai.TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}, nil
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}, nil

	case reflect.Slice, reflect.Array:
		items, err := generateSchemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("schemas: element of %s: %w", t, err)
		}
		return &genai.Schema{Type: genai.TypeArray, Items: items}, nil

	case reflect.Struct:
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, t.NumField()),
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := parseJSONTag(field.Tag)
			if tag.Name == "-" {
				continue
			}
			name := tag.Name
			if name == "" {
				name = field.Name
			}
			prop, err := generateSchemaForType(field.Type)
			if err != nil {
				return nil, fmt.Errorf("schemas: field %s.%s: %w", t.Name(), field.Name, err)
			}
			schema.Properties[name] = prop
			schema.PropertyOrdering = append(schema.PropertyOrdering, name)
			if !tag.OmitEmpty {
				schema.Required = append(schema.Required, name)
			}
		}
		return schema, nil
	}

	return nil, fmt.Errorf("schemas: unsupported kind %s", t.Kind())
}

type jsonTagInfo struct {
	Name      string
	OmitEmpty bool
}

func parseJSONTag(tag reflect.StructTag) jsonTagInfo {
	value := tag.Get("json")
	if value == "" {
		return jsonTagInfo{}
	}
	parts := strings.Split(value, ",")
	info := jsonTagInfo{Name: parts[0]}
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			info.OmitEmpty = true
		}
	}
	return info
}
