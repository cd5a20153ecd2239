package values

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Decode converts a merged values tree into Values. Scalars are converted
// loosely so that --set strings and YAML numbers land in typed fields.
func Decode(raw map[string]any) (*Values, error) {
	var out Values
	config := &mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(castScalar),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return &out, nil
}

func castScalar(from reflect.Type, to reflect.Type, data any) (any, error) {
	if data == nil || from == to {
		return data, nil
	}
	switch to.Kind() {
	case reflect.String:
		if from.Kind() != reflect.Map && from.Kind() != reflect.Slice {
			return cast.ToStringE(data)
		}
	case reflect.Bool:
		return cast.ToBoolE(data)
	case reflect.Int:
		return cast.ToIntE(data)
	}
	return data, nil
}
