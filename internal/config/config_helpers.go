package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

// lookup returns the value at path when it exists with the wanted kind.
// A present value of another kind is a type error.
func lookup(v cue.Value, path string, kind cue.Kind, kindName string) (cue.Value, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return cue.Value{}, false, nil
	}
	if f.Kind() != kind {
		return cue.Value{}, false, fmt.Errorf("invalid type for field: %s (expected %s)", path, kindName)
	}
	return f, true, nil
}

func decodeField[T any](v cue.Value, path string, kind cue.Kind, kindName string) (*T, error) {
	f, ok, err := lookup(v, path, kind, kindName)
	if err != nil || !ok {
		return nil, err
	}
	var out T
	if err := f.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return &out, nil
}

func optionalString(v cue.Value, path string) (*string, error) {
	return decodeField[string](v, path, cue.StringKind, "string")
}

func optionalInt(v cue.Value, path string) (*int, error) {
	return decodeField[int](v, path, cue.IntKind, "int")
}

func optionalBool(v cue.Value, path string) (*bool, error) {
	return decodeField[bool](v, path, cue.BoolKind, "bool")
}

func optionalList[T any](v cue.Value, path string) (*[]T, error) {
	return decodeField[[]T](v, path, cue.ListKind, "list")
}
