package config

import (
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// CustomHooks replace viper's default decode hooks, so the defaults are repeated here.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
		FractionDecodeHook(),
	)),
}

// FractionDecodeHook lets float fields be written as percentages, e.g. "2%" for 0.02.
func FractionDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Float64 {
			return data, nil
		}
		s := data.(string)
		if len(s) == 0 || s[len(s)-1] != '%' {
			return data, nil
		}
		percentage, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return nil, err
		}
		return percentage / 100, nil
	}
}
