package botserver

import (
	"math"
	"reflect"
	"strings"
)

// jsonView converts v into maps, slices and scalars that encoding/json can
// always marshal.  Non-finite floats become null.  Struct fields follow their
// json tags, including omitempty and embedded struct flattening.
func jsonView(v interface{}) interface{} {
	return view(reflect.ValueOf(v))
}

func view(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return view(v.Elem())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = view(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = view(iter.Value())
		}
		return out
	case reflect.Struct:
		out := map[string]interface{}{}
		viewStruct(v, out)
		return out
	}
	if !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

func viewStruct(v reflect.Value, out map[string]interface{}) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := v.Field(i)

		if f.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			viewStruct(fv, out)
			continue
		}
		if f.PkgPath != "" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		out[name] = view(fv)
	}
}
