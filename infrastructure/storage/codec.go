package storage

import (
	"fmt"
	"time"

	"friendly-chat/contract"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// timeTag marks an encoded time.Time, structpb having no timestamp kind.
const timeTag = "$time"

// EncodeRecord serializes a record as a protobuf Struct.
// Server timestamp sentinels must have been resolved beforehand.
func EncodeRecord(record contract.Record) ([]byte, error) {
	fields := make(map[string]any, len(record))
	for k, v := range record {
		encoded, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = encoded
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func DecodeRecord(data []byte) (contract.Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	record := make(contract.Record, len(s.GetFields()))
	for k, v := range s.AsMap() {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		record[k] = decoded
	}
	return record, nil
}

func encodeValue(v any) (any, error) {
	switch value := v.(type) {
	case time.Time:
		return map[string]any{timeTag: value.UTC().Format(time.RFC3339Nano)}, nil
	case contract.Record:
		return encodeMap(value)
	case map[string]any:
		return encodeMap(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			encoded, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	default:
		if contract.IsServerTimestamp(v) {
			return nil, fmt.Errorf("unresolved server timestamp")
		}
		return v, nil
	}
}

func encodeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, item := range m {
		encoded, err := encodeValue(item)
		if err != nil {
			return nil, err
		}
		out[k] = encoded
	}
	return out, nil
}

func decodeValue(v any) (any, error) {
	switch value := v.(type) {
	case map[string]any:
		if raw, ok := value[timeTag].(string); ok && len(value) == 1 {
			return time.Parse(time.RFC3339Nano, raw)
		}
		out := make(map[string]any, len(value))
		for k, item := range value {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveServerTimestamps returns a copy of record where sentinels hold now.
func resolveServerTimestamps(record contract.Record, now time.Time) contract.Record {
	out := make(contract.Record, len(record))
	for k, v := range record {
		if contract.IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}
