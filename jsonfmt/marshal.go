package jsonfmt

import (
	"fmt"

	"github.com/dhoelle/shapeshift"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSONOptions returns json.Options that route every T through adapter A
// when used with [json.Marshal] and [json.Unmarshal].
func JSONOptions[T any, A shapeshift.Adapter[T]]() json.Options {
	return json.JoinOptions(
		json.WithMarshalers(
			MarshalFunc[T, A](),
		),
		json.WithUnmarshalers(
			UnmarshalFunc[T, A](),
		),
	)
}

// MarshalFunc creates [json.Marshalers] which intercept marshaling of
// values of type T and encode them through adapter A:
//
//	type Ports = shapeshift.SliceOf[int, shapeshift.DisplayFromStr[int]]
//	b, _ := json.Marshal(cfg, json.WithMarshalers(jsonfmt.MarshalFunc[[]int, Ports]()))
//
// Struct fields, map values and slice elements of type T are all
// intercepted.
func MarshalFunc[T any, A shapeshift.SerializeAs[T]]() *json.Marshalers {
	return json.MarshalToFunc(func(enc *jsontext.Encoder, v T) error {
		if err := shapeshift.NewSerializeAsWrap[T, A](&v).Serialize(NewSerializer(enc)); err != nil {
			return fmt.Errorf("failed to marshal %T: %w", v, err)
		}
		return nil
	})
}

// UnmarshalFunc creates [json.Unmarshalers] which intercept unmarshaling
// into values of type T and decode them through adapter A.
func UnmarshalFunc[T any, A shapeshift.DeserializeAs[T]]() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, ptr *T) error {
		var w shapeshift.DeserializeAsWrap[T, A]
		if err := w.Deserialize(NewDeserializer(dec)); err != nil {
			return fmt.Errorf("failed to unmarshal %T: %w", *ptr, err)
		}
		*ptr = w.Into()
		return nil
	})
}
