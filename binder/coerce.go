package binder

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// coerceValue converts a raw loaded value (typically a string or a JSON
// number) into the item's declared type. Already-assignable values pass
// through untouched; everything else goes through a weakly typed
// mapstructure decode with duration and text-unmarshaler support.
func coerceValue(raw any, target reflect.Type) (any, error) {
	if raw == nil || target == nil {
		return raw, nil
	}
	if reflect.TypeOf(raw).AssignableTo(target) {
		return raw, nil
	}

	out := reflect.New(target)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}
