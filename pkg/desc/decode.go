package desc

import (
	"encoding"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// block is a single %KEY% header and its value lines.
type block struct {
	key    string
	line   int
	values []string
}

// Unmarshal decodes data into the struct pointed to by v. Unknown keys
// are ignored. If an error is returned, v is left unchanged.
func Unmarshal(data []byte, v any) error {
	d := &Decoder{}
	return d.decode(string(data), v)
}

// A Decoder reads a record from an input stream.
type Decoder struct {
	r               io.Reader
	disallowUnknown bool
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// DisallowUnknownKeys causes the Decoder to return an error when the
// input contains a key that does not match any field of the destination.
func (d *Decoder) DisallowUnknownKeys() {
	d.disallowUnknown = true
}

// Decode reads the whole input and stores the record in v.
func (d *Decoder) Decode(v any) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return d.decode(string(data), v)
}

func (d *Decoder) decode(data string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}
	dst := rv.Elem()
	fields, err := cachedTypeFields(dst.Type())
	if err != nil {
		return err
	}

	blocks, err := parseBlocks(data)
	if err != nil {
		return err
	}

	// decode into a copy so that v is untouched on error
	rv = reflect.New(dst.Type()).Elem()
	rv.Set(dst)

	// absent fields always decode to their zero value
	for i := range fields.list {
		fv := rv.Field(fields.list[i].index)
		fv.SetZero()
	}

	seen := make([]bool, len(fields.list))
	for _, b := range blocks {
		i, ok := fields.byKey[b.key]
		if !ok {
			if d.disallowUnknown {
				return &UnexpectedKeyError{Line: b.line, Key: b.key, Type: rv.Type()}
			}
			continue
		}
		f := &fields.list[i]
		if seen[i] {
			return &MalformedBlockError{Line: b.line, Key: b.key, Reason: "duplicate block"}
		}
		seen[i] = true
		if err := setField(rv.Field(f.index), f, b); err != nil {
			return err
		}
	}

	for i := range fields.list {
		f := &fields.list[i]
		if !seen[i] && f.required() {
			return &MissingFieldError{Key: f.key, Field: f.name}
		}
	}
	dst.Set(rv)
	return nil
}

// parseBlocks splits data into blocks. Blank lines separate blocks and
// may repeat; every header must be followed by at least one value line.
func parseBlocks(data string) ([]block, error) {
	lines := strings.Split(data, "\n")
	var blocks []block
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		key, ok := parseHeader(line)
		if !ok {
			return nil, &MalformedBlockError{Line: i + 1, Reason: "expected block header, found " + strconv.Quote(line)}
		}
		b := block{key: key, line: i + 1}
		for i+1 < len(lines) && lines[i+1] != "" {
			i++
			b.values = append(b.values, lines[i])
		}
		if len(b.values) == 0 {
			return nil, &MalformedBlockError{Line: b.line, Key: key, Reason: "no value lines"}
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func parseHeader(line string) (string, bool) {
	if len(line) < 3 || line[0] != '%' || line[len(line)-1] != '%' {
		return "", false
	}
	key := line[1 : len(line)-1]
	if strings.Contains(key, "%") {
		return "", false
	}
	return key, true
}

func setField(fv reflect.Value, f *field, b block) error {
	switch f.arity {
	case aritySequence:
		s := reflect.MakeSlice(fv.Type(), len(b.values), len(b.values))
		for i, val := range b.values {
			if err := setScalar(s.Index(i), val); err != nil {
				return &ValueError{Line: b.line + i + 1, Key: b.key, Value: val, Type: s.Index(i).Type(), Err: err}
			}
		}
		fv.Set(s)
		return nil
	case arityOptional:
		if len(b.values) != 1 {
			return &ArityError{Line: b.line, Key: b.key, Field: f.name, Count: len(b.values)}
		}
		target := fv
		if fv.Kind() == reflect.Pointer {
			fv.Set(reflect.New(fv.Type().Elem()))
			target = fv.Elem()
		}
		if err := setScalar(target, b.values[0]); err != nil {
			return &ValueError{Line: b.line + 1, Key: b.key, Value: b.values[0], Type: target.Type(), Err: err}
		}
		return nil
	default:
		if len(b.values) != 1 {
			return &ArityError{Line: b.line, Key: b.key, Field: f.name, Count: len(b.values)}
		}
		if err := setScalar(fv, b.values[0]); err != nil {
			return &ValueError{Line: b.line + 1, Key: b.key, Value: b.values[0], Type: fv.Type(), Err: err}
		}
		return nil
	}
}

func setScalar(v reflect.Value, s string) error {
	if isText(v.Type()) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(n)
	}
	return nil
}
