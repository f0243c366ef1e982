package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Decode copies a Struct payload into v through its JSON form.
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := in.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode struct payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// Encode converts v into a Struct payload through its JSON form. v must encode as a JSON object.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("failed to build struct payload: %w", err)
	}
	return out, nil
}
