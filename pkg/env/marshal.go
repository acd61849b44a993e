package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const maskedValue = "********"

// MarshalEnv renders the env-tagged fields of a struct pointer as .env lines.
// Zero values are skipped. Fields tagged `mask:"true"` are written masked
// when mask is set, so the output is safe to print.
func MarshalEnv(c any, mask bool) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return "", fmt.Errorf("marshal env: expected pointer to struct, got %T", c)
	}
	v = v.Elem()
	t := v.Type()

	var lines []string
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("env")
		if tag == "" || !field.IsExported() {
			continue
		}

		// "KEY,required,notEmpty" -> KEY
		key, _, _ := strings.Cut(tag, ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() {
			continue
		}

		strVal := formatValue(val, field.Tag.Get("envSeparator"))
		if mask && field.Tag.Get("mask") == "true" {
			strVal = maskedValue
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, strVal))
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return result, nil
}

func formatValue(v reflect.Value, sep string) string {
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		if sep == "" {
			sep = ","
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i), sep)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
