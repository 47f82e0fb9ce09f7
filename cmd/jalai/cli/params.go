// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagsFromParams creates a [pflag.FlagSet] with flags bound to the
// tagged fields of params, a pointer to a struct. Panics on invalid
// input, which is a programming error.
//
//	var params listParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params fields are populated after flag parsing
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for each tagged field in params.
//
// Tags:
//
//   - flag:"name" or flag:"name,n" names the long flag and optional
//     shorthand. Fields without it are skipped.
//   - desc:"help text" is the flag's help line.
//   - default:"value" is parsed according to the field type.
//   - env:"VAR" overrides default with $VAR when set and non-empty.
//
// Supported field types are string, bool, int, float64,
// [time.Duration] and []string. Embedded structs are bound
// recursively, so shared flag groups compose by embedding.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()
	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag := field.Tag.Get("flag")
		if tag == "" {
			continue
		}
		name, shorthand, _ := strings.Cut(tag, ",")
		defaultString := field.Tag.Get("default")
		description := field.Tag.Get("desc")
		if variable := field.Tag.Get("env"); variable != "" {
			description += " (env " + variable + ")"
			if value := os.Getenv(variable); value != "" {
				defaultString = value
			}
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		if err := bindField(fieldValue.Addr().Interface(), flagSet, name, shorthand, description, defaultString); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func bindField(pointer any, flagSet *pflag.FlagSet, name, shorthand, description, defaultString string) error {
	switch target := pointer.(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, defaultString, description)
	case *bool:
		value, err := parseDefault(defaultString, strconv.ParseBool)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.BoolVarP(target, name, shorthand, value, description)
	case *int:
		value, err := parseDefault(defaultString, strconv.Atoi)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.IntVarP(target, name, shorthand, value, description)
	case *float64:
		value, err := parseDefault(defaultString, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.Float64VarP(target, name, shorthand, value, description)
	case *time.Duration:
		value, err := parseDefault(defaultString, time.ParseDuration)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.DurationVarP(target, name, shorthand, value, description)
	case *[]string:
		var value []string
		if defaultString != "" {
			value = strings.Split(defaultString, ",")
		}
		flagSet.StringSliceVarP(target, name, shorthand, value, description)
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", pointer, name)
	}
	return nil
}

// parseDefault returns the zero value for an empty default.
func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}
