// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// provider.go defines the Provider interface and the ordered decoder
// chain that extracts an image URL from the provider's heterogeneous
// response shapes.
package icongen

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"icon_backend/core"
)

// Provider is the interface for image generation backends.
//
// Generate creates one image from the given prompt and returns the
// provider's raw response. The response shape varies by provider;
// ExtractImageURL resolves it to a URL.
type Provider interface {
	Generate(ctx context.Context, prompt string) (any, error)
}

// urlDecoder attempts to extract an image URL from a raw response.
// It reports false when the shape does not match.
type urlDecoder func(raw any) (string, bool)

// urlDecoders are tried in fixed precedence order:
//  1. first element of a slice, when it is a string
//  2. first element of a slice, when it exposes a url field
//  3. the whole response as a string
//  4. the whole response exposing a url field
var urlDecoders = []urlDecoder{
	decodeFirstElementString,
	decodeFirstElementURLField,
	decodeString,
	decodeURLField,
}

// ExtractImageURL resolves an image URL from a provider response,
// trying each decoder in precedence order. Returns an extraction error
// when no decoder matches.
func ExtractImageURL(raw any) (string, error) {
	if raw != nil {
		for _, decode := range urlDecoders {
			if url, ok := decode(raw); ok && url != "" {
				return url, nil
			}
		}
	}
	return "", &core.APIError{
		Status:  http.StatusBadGateway,
		Code:    core.ErrCodeExtractionFailed,
		Message: "could not extract an image URL from the provider response",
	}
}

func decodeFirstElementString(raw any) (string, bool) {
	elem, ok := firstElement(raw)
	if !ok {
		return "", false
	}
	s, ok := elem.(string)
	return s, ok
}

func decodeFirstElementURLField(raw any) (string, bool) {
	elem, ok := firstElement(raw)
	if !ok {
		return "", false
	}
	return urlField(elem)
}

func decodeString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

func decodeURLField(raw any) (string, bool) {
	return urlField(raw)
}

// firstElement returns the first element of a slice or array response.
func firstElement(raw any) (any, bool) {
	v := reflect.ValueOf(raw)
	if !v.IsValid() {
		return nil, false
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	if v.Len() == 0 {
		return nil, false
	}
	return v.Index(0).Interface(), true
}

// urlField extracts a url field from a map, struct, or value with a
// URL method, resolving lazily computed values.
func urlField(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	if m, ok := v.(map[string]any); ok {
		for key, val := range m {
			if strings.EqualFold(key, "url") {
				return resolveURLValue(val), true
			}
		}
		return "", false
	}
	if m, ok := v.(map[string]string); ok {
		for key, val := range m {
			if strings.EqualFold(key, "url") {
				return val, true
			}
		}
		return "", false
	}

	rv := reflect.ValueOf(v)
	if method := rv.MethodByName("URL"); method.IsValid() &&
		method.Type().NumIn() == 0 && method.Type().NumOut() == 1 {
		return stringify(method.Call(nil)[0].Interface()), true
	}

	rv = reflect.Indirect(rv)
	if rv.Kind() == reflect.Struct {
		field := rv.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, "url")
		})
		if field.IsValid() && field.CanInterface() {
			return resolveURLValue(field.Interface()), true
		}
	}

	return "", false
}

// resolveURLValue resolves the value of a url field: invokable values
// are invoked, everything else is stringified.
func resolveURLValue(v any) string {
	switch u := v.(type) {
	case string:
		return u
	case func() string:
		return u()
	case fmt.Stringer:
		return u.String()
	}

	fn := reflect.ValueOf(v)
	if fn.IsValid() && fn.Kind() == reflect.Func &&
		fn.Type().NumIn() == 0 && fn.Type().NumOut() == 1 {
		return stringify(fn.Call(nil)[0].Interface())
	}

	return stringify(v)
}

// stringify renders any value as a string.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
