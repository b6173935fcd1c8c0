package desc

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Marshal returns the block encoding of v, which must be a struct or a
// pointer to one.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// An Encoder writes records to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one block per present field of v, in declaration order.
// Nothing is written if v cannot be encoded.
func (e *Encoder) Encode(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return &UnsupportedTypeError{Type: rv.Type()}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
	fields, err := cachedTypeFields(rv.Type())
	if err != nil {
		return err
	}
	// text marshalers may be declared on the pointer receiver
	if !rv.CanAddr() {
		tmp := reflect.New(rv.Type()).Elem()
		tmp.Set(rv)
		rv = tmp
	}

	var sb strings.Builder
	for i := range fields.list {
		f := &fields.list[i]
		values, err := fieldValues(rv.Field(f.index), f)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			continue
		}
		sb.WriteString("%" + f.key + "%\n")
		for _, val := range values {
			sb.WriteString(val)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	_, err = io.WriteString(e.w, sb.String())
	return err
}

// fieldValues returns the value lines for a field. A nil result means the
// field is omitted.
func fieldValues(fv reflect.Value, f *field) ([]string, error) {
	switch f.arity {
	case aritySequence:
		if fv.Len() == 0 {
			return nil, nil
		}
		values := make([]string, fv.Len())
		for i := range fv.Len() {
			s, err := formatValue(fv.Index(i), f.key)
			if err != nil {
				return nil, err
			}
			values[i] = s
		}
		return values, nil
	case arityOptional:
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				return nil, nil
			}
			fv = fv.Elem()
		} else if fv.IsZero() {
			return nil, nil
		}
	}
	s, err := formatValue(fv, f.key)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func formatValue(v reflect.Value, key string) (string, error) {
	s, err := formatScalar(v)
	if err != nil {
		return "", &MarshalerError{Key: key, Err: err}
	}
	if s == "" {
		return "", &UnsupportedValueError{Key: key, Value: s, Reason: "empty values cannot be represented"}
	}
	if strings.Contains(s, "\n") {
		return "", &UnsupportedValueError{Key: key, Value: s, Reason: "values must fit on a single line"}
	}
	return s, nil
}

func formatScalar(v reflect.Value) (string, error) {
	if isText(v.Type()) {
		var m encoding.TextMarshaler
		if v.Type().Implements(textMarshalerType) {
			m = v.Interface().(encoding.TextMarshaler)
		} else {
			m = v.Addr().Interface().(encoding.TextMarshaler)
		}
		b, err := m.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
	}
	return "", &UnsupportedTypeError{Type: v.Type()}
}
