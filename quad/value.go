// Package quad defines the value domain and quad/direction types shared by
// the shape/iterator subsystem and its backends.
package quad

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Value is a type used by all quad directions. Equality and hashing are
// structural: HashOf is derived from String, so two values that print the
// same are treated as equal by backends.
type Value interface {
	String() string
	// Native converts Value to a closest native Go type.
	//
	// If the type has no analog in Go, Native returns the value itself.
	Native() interface{}
}

// TypedStringer is implemented by values that have a canonical
// TypedString encoding (numbers, bools, times).
type TypedStringer interface {
	TypedString() TypedString
}

// Equaler is implemented by values that need a special equality check
// beyond comparing their String form (e.g. Time, which must ignore
// monotonic-clock noise).
type Equaler interface {
	Equal(v Value) bool
}

// HashSize is the size of the slice returned by HashOf.
const HashSize = sha1.Size

var hashPool = sync.Pool{
	New: func() interface{} { return sha1.New() },
}

// HashOf calculates a hash of value v.
func HashOf(v Value) []byte {
	key := make([]byte, HashSize)
	HashTo(v, key)
	return key
}

// HashTo calculates a hash of value v, storing it in p.
func HashTo(v Value, p []byte) {
	h := hashPool.Get().(hash.Hash)
	h.Reset()
	defer hashPool.Put(h)
	if len(p) < HashSize {
		panic("quad: buffer too small to fit the hash")
	}
	if v != nil {
		h.Write([]byte(v.String()))
	}
	h.Sum(p[:0])
}

// StringOf safely calls v.String, returning "" for a nil Value.
func StringOf(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// NativeOf safely calls v.Native, returning nil for a nil Value.
func NativeOf(v Value) interface{} {
	if v == nil {
		return nil
	}
	return v.Native()
}

// AsValue converts a native Go type into its closest Value representation.
// ok is false if the type was not recognized.
func AsValue(v interface{}) (out Value, ok bool) {
	if v == nil {
		return nil, true
	}
	switch v := v.(type) {
	case Value:
		out = v
	case string:
		out = String(v)
	case int:
		out = Int(v)
	case int64:
		out = Int(v)
	case int32:
		out = Int(v)
	case float64:
		out = Float(v)
	case float32:
		out = Float(v)
	case bool:
		out = Bool(v)
	case time.Time:
		out = Time(v)
	default:
		return nil, false
	}
	return out, true
}

// Raw is a pre-encoded value, stored verbatim (used for bare identifiers
// such as "alice" that are not quoted literals).
type Raw string

func (s Raw) String() string      { return string(s) }
func (s Raw) Native() interface{} { return s }

// String is a plain string value (ex: "name").
type String string

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\n", "\\n",
	"\r", "\\r",
	"\t", "\\t",
)

func (s String) String() string {
	return `"` + escaper.Replace(string(s)) + `"`
}
func (s String) Native() interface{} { return string(s) }

// TypedString is a value with an explicit type IRI (ex: "21"^^<int>).
type TypedString struct {
	Value String
	Type  IRI
}

func (s TypedString) String() string {
	return s.Value.String() + `^^` + s.Type.String()
}
func (s TypedString) Native() interface{} {
	if s.Type == "" {
		return s.Value.Native()
	}
	if v, err := s.ParseValue(); err == nil && v != s {
		return v.Native()
	}
	return s
}

// ParseValue tries to parse the underlying string using a registered
// conversion for s.Type. It returns s unchanged if no conversion is
// registered, and an error if one is registered but parsing fails.
func (s TypedString) ParseValue() (Value, error) {
	fnc := knownConversions[s.Type]
	if fnc == nil {
		return s, nil
	}
	return fnc(string(s.Value))
}

// IRI is an identifier value (ex: <name>).
type IRI string

func (s IRI) String() string      { return `<` + string(s) + `>` }
func (s IRI) Native() interface{} { return s }

// BNode is an anonymous node identifier (ex: _:name).
type BNode string

func (s BNode) String() string      { return `_:` + string(s) }
func (s BNode) Native() interface{} { return s }

// LangString is a string literal tagged with a BCP 47 language tag
// (ex: "chat"@en).
type LangString struct {
	Value String
	Lang  string
}

func (s LangString) String() string      { return s.Value.String() + `@` + s.Lang }
func (s LangString) Native() interface{} { return s }

// StringConversion converts a typed string's payload into its native Value.
type StringConversion func(string) (Value, error)

const (
	defaultIntType   IRI = "int"
	defaultFloatType IRI = "float"
	defaultBoolType  IRI = "bool"
	defaultTimeType  IRI = "time"
)

func init() {
	RegisterStringConversion(defaultIntType, stringToInt)
	RegisterStringConversion(defaultBoolType, stringToBool)
	RegisterStringConversion(defaultFloatType, stringToFloat)
	RegisterStringConversion(defaultTimeType, stringToTime)
}

var knownConversions = make(map[IRI]StringConversion)

// RegisterStringConversion registers an automatic conversion of
// TypedString values of the given type to a native Value (Int, Time, ...).
// A nil fnc removes any existing conversion for dataType.
func RegisterStringConversion(dataType IRI, fnc StringConversion) {
	if fnc == nil {
		delete(knownConversions, dataType)
	} else {
		knownConversions[dataType] = fnc
	}
}

func stringToInt(s string) (Value, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return Int(v), nil
}

func stringToBool(s string) (Value, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return Bool(v), nil
}

func stringToFloat(s string) (Value, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return Float(v), nil
}

func stringToTime(s string) (Value, error) {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return Time(v), nil
}

// Int is a native wrapper for int64.
type Int int64

func (s Int) String() string      { return s.TypedString().String() }
func (s Int) Native() interface{} { return int64(s) }
func (s Int) TypedString() TypedString {
	return TypedString{Value: String(strconv.FormatInt(int64(s), 10)), Type: defaultIntType}
}

// Float is a native wrapper for float64.
type Float float64

func (s Float) String() string      { return s.TypedString().String() }
func (s Float) Native() interface{} { return float64(s) }
func (s Float) TypedString() TypedString {
	return TypedString{Value: String(strconv.FormatFloat(float64(s), 'g', -1, 64)), Type: defaultFloatType}
}

// Bool is a native wrapper for bool.
type Bool bool

func (s Bool) String() string      { return s.TypedString().String() }
func (s Bool) Native() interface{} { return bool(s) }
func (s Bool) TypedString() TypedString {
	v := "false"
	if bool(s) {
		v = "true"
	}
	return TypedString{Value: String(v), Type: defaultBoolType}
}

var _ Equaler = Time{}

// Time is a native wrapper for time.Time.
type Time time.Time

func (s Time) String() string      { return s.TypedString().String() }
func (s Time) Native() interface{} { return time.Time(s) }
func (s Time) Equal(v Value) bool {
	t, ok := v.(Time)
	if !ok {
		return false
	}
	return time.Time(s).Equal(time.Time(t))
}
func (s Time) TypedString() TypedString {
	return TypedString{Value: String(time.Time(s).Format(time.RFC3339Nano)), Type: defaultTimeType}
}

// ByValueString sorts Values by the string form of their backend name.
type ByValueString []Value

func (o ByValueString) Len() int           { return len(o) }
func (o ByValueString) Less(i, j int) bool { return StringOf(o[i]) < StringOf(o[j]) }
func (o ByValueString) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }

// Sequence generates a stream of distinct BNode identifiers.
type Sequence struct {
	last uint64
}

// Next returns a new blank node. Safe for concurrent use.
func (s *Sequence) Next() BNode {
	n := atomic.AddUint64(&s.last, 1)
	return BNode(fmt.Sprintf("n%d", n))
}

var randSource = rand.New(rand.NewSource(1))

// RandomBlankNode returns a randomly generated blank node.
func RandomBlankNode() BNode {
	return BNode(fmt.Sprintf("n%d", randSource.Int63()))
}
