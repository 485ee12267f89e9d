package config

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// decoderConfig mirrors koanf's default decoder (weak typing, duration and
// TextUnmarshaler hooks) and adds a range check for unsigned targets.
// Weak decoding would otherwise wrap 70000 to 4464 and -1 to 65535 on a
// uint16 port.
func decoderConfig(out any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			uintRangeHook(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
	}
}

// uintRangeHook fails numeric input that does not fit the unsigned target.
// Strings are left alone: weak decoding parses them with the target's bit
// size and already rejects overflow.
func uintRangeHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		switch to.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return data, nil
		}

		v := reflect.ValueOf(data)
		target := reflect.Zero(to)
		bad := false
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := v.Int()
			bad = n < 0 || target.OverflowUint(uint64(n))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			bad = target.OverflowUint(v.Uint())
		case reflect.Float32, reflect.Float64:
			f := v.Float()
			bad = f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 || target.OverflowUint(uint64(f))
		}
		if bad {
			return nil, fmt.Errorf("%v out of range for %s", data, to)
		}
		return data, nil
	}
}
