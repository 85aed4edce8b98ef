package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetBool
	WidgetSlider
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label":  WidgetLabel,
	"bar":    WidgetBar,
	"bool":   WidgetBool,
	"slider": WidgetSlider,
	"skip":   WidgetSkip,
}

// Tag is a parsed `inspect:"widget,min:..,max:..,fmt:.."` struct tag.
// Min and Max default to 0 and 1.
type Tag struct {
	Widget Widget
	Min    float64
	Max    float64
	Format string
}

// Field is one exported struct field with its rendering hints.
type Field struct {
	Name  string
	Index int // struct field index, for SetFloat
	Value any
	Tag   Tag
}

// ParseTag parses an inspect struct tag. Unknown widgets fall back to auto
// and malformed options are ignored.
//
//	`inspect:"bar,max:200"`
//	`inspect:"slider,min:0,max:1,fmt:%.3f"`
//	`inspect:"skip"`
func ParseTag(s string) Tag {
	tag := Tag{Max: 1}
	if s == "" {
		return tag
	}

	parts := strings.Split(s, ",")
	tag.Widget = widgetNames[strings.TrimSpace(parts[0])]
	for _, part := range parts[1:] {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		switch key {
		case "min", "max":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			if key == "min" {
				tag.Min = f
			} else {
				tag.Max = f
			}
		case "fmt":
			tag.Format = val
		}
	}
	return tag
}

// ExtractFields lists the exported, non-skipped fields of a struct or
// struct pointer. Other kinds yield nil.
func ExtractFields(v any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	var fields []Field
	for i := range rv.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := ParseTag(sf.Tag.Get("inspect"))
		switch tag.Widget {
		case WidgetSkip:
			continue
		case WidgetAuto:
			tag.Widget = WidgetLabel
			if sf.Type.Kind() == reflect.Bool {
				tag.Widget = WidgetBool
			}
		}
		fields = append(fields, Field{Name: sf.Name, Index: i, Value: rv.Field(i).Interface(), Tag: tag})
	}
	return fields
}

// SetFloat assigns value to the numeric field at index of the struct target
// points to. Integer fields truncate.
func SetFloat(target any, index int, value float64) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("inspector: SetFloat needs a struct pointer, got %T", target)
	}
	rv = rv.Elem()
	if index < 0 || index >= rv.NumField() {
		return fmt.Errorf("inspector: field index %d out of range for %s", index, rv.Type())
	}

	fv := rv.Field(index)
	name := rv.Type().Field(index).Name
	if !fv.CanSet() {
		return fmt.Errorf("inspector: field %s is not settable", name)
	}
	switch {
	case fv.CanFloat():
		fv.SetFloat(value)
	case fv.CanInt():
		fv.SetInt(int64(value))
	default:
		return fmt.Errorf("inspector: field %s has kind %s", name, fv.Kind())
	}
	return nil
}

// FormatValue formats a field value, floats with two decimals unless format is set.
func FormatValue(value any, format string) string {
	if format != "" {
		return fmt.Sprintf(format, value)
	}
	switch v := value.(type) {
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprint(value)
}

// Float converts any numeric value to float64.
func Float(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanFloat():
		return rv.Float(), true
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	}
	return 0, false
}
