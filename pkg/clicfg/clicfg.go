package clicfg

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
)

var (
	ErrCannotParseFlags = errors.New("cannot parse flags")
	ErrUnsupportedField = errors.New("unsupported field type")
)

var durationType = reflect.TypeOf(time.Duration(0))

// ParseFlags copies the values of c's flags into the fields of the struct s points to.
// Fields are matched by a `flag:"<name>"` tag, fields of embedded structs included.
// A field whose flag is not defined anywhere in c's lineage is left untouched.
func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}
	v = v.Elem()

	for _, field := range reflect.VisibleFields(v.Type()) {
		name := field.Tag.Get("flag")
		if name == "" {
			continue
		}

		dst, err := v.FieldByIndexErr(field.Index)
		if err != nil || !dst.CanSet() {
			continue
		}

		value := c.Value(name)
		if value == nil {
			continue
		}

		if err := assign(dst, value); err != nil {
			return fmt.Errorf("%w: field %s from flag %s: %w", ErrCannotParseFlags, field.Name, name, err)
		}
	}

	return nil
}

// assign stores a flag value in dst. Numbers convert within their family,
// strings are parsed into whatever dst holds.
func assign(dst reflect.Value, value any) error {
	src := reflect.ValueOf(value)

	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case family(src.Kind()) == family(dst.Kind()) && src.CanConvert(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	case src.Kind() == reflect.String:
		return parse(dst, src.String())
	default:
		return fmt.Errorf("%w: cannot store %s in %s", ErrUnsupportedField, src.Type(), dst.Type())
	}
	return nil
}

func parse(dst reflect.Value, s string) error {
	if s == "" {
		return nil
	}

	if u, ok := dst.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(s))
	}

	if dst.Type() == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch family(dst.Kind()) {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int:
		n, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case reflect.Uint:
		n, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedField, dst.Type())
	}
	return nil
}

// family folds sized kinds together so int flags fill int32 fields and the like.
func family(k reflect.Kind) reflect.Kind {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return reflect.Uint
	case reflect.Float32, reflect.Float64:
		return reflect.Float64
	default:
		return k
	}
}
