package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Mapper: значения, которые сами знают своё представление для кеша.
type Mapper interface {
	ToMap() map[string]any
}

// Encode превращает значение в JSON. Ошибок не бывает: то, что не сериализуется,
// кладётся строкой fmt.Sprint(value).
func Encode(value any) (out []byte) {
	defer func() {
		// паникующий ToMap не должен ронять запись в кеш
		if r := recover(); r != nil {
			out, _ = json.Marshal(fmt.Sprint(value))
		}
	}()
	b, err := json.Marshal(normalize(value))
	if err == nil {
		return b
	}
	b, _ = json.Marshal(fmt.Sprint(value))
	return b
}

// normalize рекурсивно раскрывает Mapper, время (ISO-8601), мапы и срезы.
// Структуры и json.Marshaler отдаются encoding/json как есть.
func normalize(v any) any {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	switch t := v.(type) {
	case nil:
		return nil
	case Mapper:
		return normalize(t.ToMap())
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case *time.Time:
		return t.Format(time.RFC3339Nano)
	case json.Marshaler, []byte, string, bool:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	return v
}
