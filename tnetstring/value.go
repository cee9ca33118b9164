package tnetstring

// Type tags
const (
	TagString byte = ','
	TagInt    byte = '#'
	TagFloat  byte = '^'
	TagBool   byte = '!'
	TagNull   byte = '~'
	TagList   byte = ']'
	TagDict   byte = '}'
)

// Value is one decoded tnetstring. The set of implementations is closed:
// String, Int, Float, Bool, Null, List and Dict.
type Value interface {
	// Tag returns the type tag that terminates the encoded value.
	Tag() byte

	appendPayload(dst []byte) []byte
}

type String []byte

type Int int64

type Float float64

type Bool bool

type Null struct{}

type List []Value

// Pair is a single dictionary entry.
type Pair struct {
	Key   String
	Value Value
}

// Dict keeps its entries in the order they were encoded. Duplicate keys are
// preserved, it's up to the consumer to decide how to merge them.
type Dict []Pair

func (String) Tag() byte { return TagString }
func (Int) Tag() byte    { return TagInt }
func (Float) Tag() byte  { return TagFloat }
func (Bool) Tag() byte   { return TagBool }
func (Null) Tag() byte   { return TagNull }
func (List) Tag() byte   { return TagList }
func (Dict) Tag() byte   { return TagDict }

// Get returns the value of the first entry with the given key.
func (d Dict) Get(key string) (Value, bool) {
	for _, pair := range d {
		if string(pair.Key) == key {
			return pair.Value, true
		}
	}

	return nil, false
}

var (
	_ Value = String(nil)
	_ Value = Int(0)
	_ Value = Float(0)
	_ Value = Bool(false)
	_ Value = Null{}
	_ Value = List(nil)
	_ Value = Dict(nil)
)
