package client

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Fetch performs the request and decodes the payload into T at the API
// boundary. Struct payloads (and slices of structs) are checked against
// their `validate` tags; a payload that fails is treated like malformed JSON.
//
// A nil result means the data is unavailable or the body was null.
func Fetch[T any](ctx context.Context, c *Client, req Request) (*T, error) {
	payload, err := c.Do(ctx, req)
	if err != nil || payload == nil {
		return nil, err
	}

	out, err := Decode[T](payload)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		if req.ThrowOnError {
			return nil, err
		}
		c.logger.Warn().
			Err(err).
			Str("path", normalizePath(req.Path)).
			Msg("API payload rejected - returning unavailable")
		return nil, nil
	}
	return out, nil
}

// Decode unmarshals and validates a payload.
func Decode[T any](payload json.RawMessage) (*T, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validatePayload(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &out, nil
}

func validatePayload(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))

	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Addr().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := validate.Struct(elem.Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
