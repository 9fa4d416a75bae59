package crud

import "github.com/bytedance/sonic"

// Codec is the JSON codec used on the wire. Integers decode as int64 so record
// identifiers survive a round trip unchanged.
var Codec = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
	UseInt64:         true,
}.Froze()

// Envelope wraps a request on the wire.
type Envelope struct {
	Params ActionRequest `json:"params"`
}
