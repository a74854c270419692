package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// KeySerializer builds a cache key from a base segment and arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(base string, args ...any) string
}

// defaultKeySerializer renders scalars and identifiers verbatim and hashes
// anything structured, so a segment never contains the separator twice.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

// SerializeKey joins base and the rendered args with KeySeparator.
func (s defaultKeySerializer) SerializeKey(base string, args ...any) string {
	if len(args) == 0 {
		return base
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, base)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	if str, ok := v.(fmt.Stringer); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "nil"
		}
		return str.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "nil"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	return s.hashValue(v)
}

// hashValue renders maps, structs and other composite values as a fixed
// width digest of their JSON form. encoding/json sorts map keys, which keeps
// the digest deterministic.
func (s defaultKeySerializer) hashValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "type_" + normalizeName(reflect.TypeOf(v).String())
	}
	return HashSegment(data)
}

// HashSegment returns the hex xxhash64 digest of data.
func HashSegment(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
