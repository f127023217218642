package types

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/kfujita/HibariDB/common"
)

// A Value is a view over one datum stored in a column or index key.
// All values carry a type tag and comparison functions dispatch on the
// declared type. Callers must not compare values of differing types.
type Value struct {
	valueType TypeID
	integer   *int32
	bigInt    *int64
	float     *float32
	double    *float64
	varchar   *string
	boolean   *bool
}

func NewInteger(value int32) Value {
	return Value{Integer, &value, nil, nil, nil, nil, nil}
}

func NewBigInt(value int64) Value {
	return Value{BigInt, nil, &value, nil, nil, nil, nil}
}

func NewFloat(value float32) Value {
	return Value{Float, nil, nil, &value, nil, nil, nil}
}

func NewDouble(value float64) Value {
	return Value{Double, nil, nil, nil, &value, nil, nil}
}

func NewVarchar(value string) Value {
	// the logical value ends at the first NUL; anything beyond it is
	// never stored
	if idx := strings.IndexByte(value, 0); idx >= 0 {
		value = value[:idx]
	}
	if len(value) > common.StringWidth-1 {
		value = value[:common.StringWidth-1]
	}
	return Value{Varchar, nil, nil, nil, nil, &value, nil}
}

func NewBoolean(value bool) Value {
	return Value{Boolean, nil, nil, nil, nil, nil, &value}
}

// NewDefaultValue returns the zero value of the given type
func NewDefaultValue(valueType TypeID) Value {
	switch valueType {
	case Integer:
		return NewInteger(0)
	case BigInt:
		return NewBigInt(0)
	case Float:
		return NewFloat(0)
	case Double:
		return NewDouble(0)
	case Varchar:
		return NewVarchar("")
	case Boolean:
		return NewBoolean(false)
	}
	panic("invalid type id")
}

// NewValueFromBytes deserializes a value from its fixed-width wire form
func NewValueFromBytes(data []byte, valueType TypeID) *Value {
	switch valueType {
	case Integer:
		v := NewInteger(int32(binary.LittleEndian.Uint32(data)))
		return &v
	case BigInt:
		v := NewBigInt(int64(binary.LittleEndian.Uint64(data)))
		return &v
	case Float:
		v := NewFloat(math.Float32frombits(binary.LittleEndian.Uint32(data)))
		return &v
	case Double:
		v := NewDouble(math.Float64frombits(binary.LittleEndian.Uint64(data)))
		return &v
	case Varchar:
		end := common.StringWidth
		for i := 0; i < common.StringWidth; i++ {
			if data[i] == 0 {
				end = i
				break
			}
		}
		v := NewVarchar(string(data[:end]))
		return &v
	case Boolean:
		v := NewBoolean(data[0] != 0)
		return &v
	}
	panic("invalid type id")
}

// Serialize encodes the value into its fixed-width wire form. Strings
// are truncated to StringWidth-1 bytes and NUL padded to StringWidth.
func (v Value) Serialize() []byte {
	switch v.valueType {
	case Integer:
		ret := make([]byte, 4)
		binary.LittleEndian.PutUint32(ret, uint32(*v.integer))
		return ret
	case BigInt:
		ret := make([]byte, 8)
		binary.LittleEndian.PutUint64(ret, uint64(*v.bigInt))
		return ret
	case Float:
		ret := make([]byte, 4)
		binary.LittleEndian.PutUint32(ret, math.Float32bits(*v.float))
		return ret
	case Double:
		ret := make([]byte, 8)
		binary.LittleEndian.PutUint64(ret, math.Float64bits(*v.double))
		return ret
	case Varchar:
		ret := make([]byte, common.StringWidth)
		copy(ret, *v.varchar)
		return ret
	case Boolean:
		if *v.boolean {
			return []byte{1}
		}
		return []byte{0}
	}
	panic("invalid type id")
}

func (v Value) ValueType() TypeID { return v.valueType }

func (v Value) ToInteger() int32  { return *v.integer }
func (v Value) ToBigInt() int64   { return *v.bigInt }
func (v Value) ToFloat() float32  { return *v.float }
func (v Value) ToDouble() float64 { return *v.double }
func (v Value) ToVarchar() string { return *v.varchar }
func (v Value) ToBoolean() bool   { return *v.boolean }

// NumericValue coerces the value to float64 for aggregation.
// Non-numeric types yield 0.
func (v Value) NumericValue() float64 {
	switch v.valueType {
	case Integer:
		return float64(*v.integer)
	case BigInt:
		return float64(*v.bigInt)
	case Float:
		return float64(*v.float)
	case Double:
		return *v.double
	}
	return 0.0
}

func (v Value) CompareEquals(right Value) bool {
	switch v.valueType {
	case Integer:
		return *v.integer == *right.integer
	case BigInt:
		return *v.bigInt == *right.bigInt
	case Float:
		return *v.float == *right.float
	case Double:
		return *v.double == *right.double
	case Varchar:
		return *v.varchar == *right.varchar
	case Boolean:
		return *v.boolean == *right.boolean
	}
	return false
}

func (v Value) CompareNotEquals(right Value) bool {
	return !v.CompareEquals(right)
}

func (v Value) CompareLessThan(right Value) bool {
	switch v.valueType {
	case Integer:
		return *v.integer < *right.integer
	case BigInt:
		return *v.bigInt < *right.bigInt
	case Float:
		return *v.float < *right.float
	case Double:
		return *v.double < *right.double
	case Varchar:
		return *v.varchar < *right.varchar
	case Boolean:
		return !*v.boolean && *right.boolean
	}
	return false
}

func (v Value) CompareLessThanOrEqual(right Value) bool {
	return v.CompareLessThan(right) || v.CompareEquals(right)
}

func (v Value) CompareGreaterThan(right Value) bool {
	return !v.CompareLessThanOrEqual(right)
}

func (v Value) CompareGreaterThanOrEqual(right Value) bool {
	return !v.CompareLessThan(right)
}

func (v Value) String() string {
	switch v.valueType {
	case Integer:
		return strconv.FormatInt(int64(*v.integer), 10)
	case BigInt:
		return strconv.FormatInt(*v.bigInt, 10)
	case Float:
		return strconv.FormatFloat(float64(*v.float), 'g', -1, 32)
	case Double:
		return strconv.FormatFloat(*v.double, 'g', -1, 64)
	case Varchar:
		return *v.varchar
	case Boolean:
		if *v.boolean {
			return "true"
		}
		return "false"
	}
	return "invalid"
}
