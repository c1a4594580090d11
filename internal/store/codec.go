package store

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

type fieldInfo struct {
	column string
	index  int
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, fieldInfo{column: name, index: i})
	}
	fieldCache.Store(t, fields)
	return fields
}

func structValue(v interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("codec: nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("codec: %T is not a struct", v)
	}
	return rv, nil
}

// Encode maps a struct onto a Record using its json tag names.
// Supported field kinds are string, int, float64 and bool.
func Encode(v interface{}) (Record, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	fields := fieldsOf(rv.Type())
	rec := make(Record, len(fields))
	for _, f := range fields {
		fv := rv.Field(f.index)
		switch fv.Kind() {
		case reflect.String:
			rec[f.column] = fv.String()
		case reflect.Int, reflect.Int32, reflect.Int64:
			rec[f.column] = strconv.FormatInt(fv.Int(), 10)
		case reflect.Float64, reflect.Float32:
			rec[f.column] = strconv.FormatFloat(fv.Float(), 'f', -1, 64)
		case reflect.Bool:
			rec[f.column] = strconv.FormatBool(fv.Bool())
		default:
			return nil, fmt.Errorf("codec: unsupported kind %s for column %s", fv.Kind(), f.column)
		}
	}
	return rec, nil
}

// Decode fills the struct v points to from rec. Empty cells decode to zero values.
func Decode(rec Record, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("codec: decode target must be a non-nil pointer, got %T", v)
	}
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	for _, f := range fieldsOf(rv.Type()) {
		raw := strings.TrimSpace(rec[f.column])
		fv := rv.Field(f.index)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(rec[f.column])
		case reflect.Int, reflect.Int32, reflect.Int64:
			if raw == "" {
				fv.SetInt(0)
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				// spreadsheets tend to store whole numbers as "2.0"
				fl, ferr := strconv.ParseFloat(raw, 64)
				if ferr != nil {
					return fmt.Errorf("codec: column %s: invalid integer %q", f.column, raw)
				}
				n = int64(fl)
			}
			fv.SetInt(n)
		case reflect.Float64, reflect.Float32:
			if raw == "" {
				fv.SetFloat(0)
				continue
			}
			fl, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("codec: column %s: invalid number %q", f.column, raw)
			}
			fv.SetFloat(fl)
		case reflect.Bool:
			switch strings.ToLower(raw) {
			case "", "false", "0", "no":
				fv.SetBool(false)
			case "true", "1", "yes":
				fv.SetBool(true)
			default:
				return fmt.Errorf("codec: column %s: invalid boolean %q", f.column, raw)
			}
		default:
			return fmt.Errorf("codec: unsupported kind %s for column %s", fv.Kind(), f.column)
		}
	}
	return nil
}
