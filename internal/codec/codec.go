// Package codec serializes the large encounter fields before storage.
// Values are JSON-encoded and block-compressed with Snappy; the inverse
// decompresses and decodes. Every blob column in the encounter and entity
// tables goes through this package.
package codec

import (
	"encoding/json"

	"github.com/golang/snappy"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// Marshal encodes v as JSON and compresses the result.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, rerrors.NewSerializationError(rerrors.CodeEncodeFailed, "marshal payload", err)
	}
	return snappy.Encode(nil, raw), nil
}

// MarshalJSON encodes v as a plain JSON document, uncompressed. Used
// for the smaller document columns that stay queryable via json_extract.
func MarshalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, rerrors.NewSerializationError(rerrors.CodeEncodeFailed, "marshal document", err)
	}
	return raw, nil
}

// Unmarshal decompresses data and decodes the JSON into v.
func Unmarshal(data []byte, v interface{}) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return rerrors.NewSerializationError(rerrors.CodeDecodeFailed, "decompress payload", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return rerrors.NewSerializationError(rerrors.CodeDecodeFailed, "unmarshal payload", err)
	}
	return nil
}
