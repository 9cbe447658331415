// Package keycodec derives fixed-length cache keys from call arguments.
//
// Arguments are encoded as canonical JSON (object keys sorted at every level) and
// the encoding is digested with 128-bit xxh3, giving a 32 character hex key.
//
// Every top-level argument is tagged with its Go type, so 1 and 1.0 or 1 and
// "1" key differently. Values nested inside maps, slices or structs are plain
// JSON: an int and a float64 with the same value in an []any share an encoding.
//
// Precision limit: an argument the JSON encoder rejects (channels, functions,
// NaN or infinite floats, maps with unsupported key types) is encoded through its
// fmt "%v" representation instead. Two distinct values of the same type that
// print the same will then share a key.
package keycodec

import (
	"encoding/hex"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
)

// KeyLength is the length of every derived key.
const KeyLength = 32

// Codec derives cache keys. The zero value is not usable; use New or Default.
type Codec struct {
	json jsoniter.API
}

// Default is a ready-to-use Codec. Codec holds no mutable state.
var Default = New()

func New() Codec {
	return Codec{
		json: jsoniter.Config{
			EscapeHTML:             false,
			SortMapKeys:            true,
			ValidateJsonRawMessage: false,
			UseNumber:              false,
		}.Froze(),
	}
}

// Derive returns the key for a call with no function identity.
func Derive(positional []any, named map[string]any) string {
	return Default.Derive(positional, named)
}

// DeriveFor returns the key for a call to the function identified by fn.
func DeriveFor(fn string, positional []any, named map[string]any) string {
	return Default.DeriveFor(fn, positional, named)
}

func (c Codec) Derive(positional []any, named map[string]any) string {
	return c.DeriveFor("", positional, named)
}

// DeriveFor never fails. Equal arguments always give equal keys, whatever
// order the named arguments were inserted in.
func (c Codec) DeriveFor(fn string, positional []any, named map[string]any) string {
	sum := xxh3.Hash128(c.Encode(fn, positional, named)).Bytes()
	return hex.EncodeToString(sum[:])
}

// Encode returns the canonical pre-digest encoding of a call.
//
// Layout: {"fn":<string>,"args":[[type,value],...],"kwargs":[[name,type,value],...]}
// with kwargs sorted by name.
func (c Codec) Encode(fn string, positional []any, named map[string]any) []byte {
	stream := c.json.BorrowStream(nil)
	defer c.json.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("fn")
	stream.WriteString(fn)
	stream.WriteMore()

	stream.WriteObjectField("args")
	stream.WriteArrayStart()
	for i, v := range positional {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteArrayStart()
		c.writeTyped(stream, v)
		stream.WriteArrayEnd()
	}
	stream.WriteArrayEnd()
	stream.WriteMore()

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	stream.WriteObjectField("kwargs")
	stream.WriteArrayStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteArrayStart()
		stream.WriteString(name)
		stream.WriteMore()
		c.writeTyped(stream, named[name])
		stream.WriteArrayEnd()
	}
	stream.WriteArrayEnd()
	stream.WriteObjectEnd()

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out
}

// writeTyped writes the type and value of one argument as two array elements.
func (c Codec) writeTyped(stream *jsoniter.Stream, v any) {
	stream.WriteString(fmt.Sprintf("%T", v))
	stream.WriteMore()
	stream.WriteRaw(c.encodeValue(v))
}

// encodeValue encodes one argument, falling back to its string form.
func (c Codec) encodeValue(v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = c.fallback(v)
		}
	}()

	s, err := c.json.MarshalToString(v)
	if err != nil {
		return c.fallback(v)
	}
	return s
}

func (c Codec) fallback(v any) string {
	s, _ := c.json.MarshalToString(fmt.Sprintf("%v", v))
	return s
}
