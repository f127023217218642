package types

import "github.com/kfujita/HibariDB/common"

type TypeID int32

const (
	Invalid TypeID = iota
	Integer
	BigInt
	Float
	Double
	Varchar
	Boolean
)

// Size returns the fixed on-disk width of a value of this type
func (t TypeID) Size() uint32 {
	switch t {
	case Integer:
		return 4
	case BigInt:
		return 8
	case Float:
		return 4
	case Double:
		return 8
	case Varchar:
		return common.StringWidth
	case Boolean:
		return 1
	}
	panic("invalid type id")
}

func (t TypeID) IsNumeric() bool {
	switch t {
	case Integer, BigInt, Float, Double:
		return true
	}
	return false
}

func (t TypeID) String() string {
	switch t {
	case Integer:
		return "INT32"
	case BigInt:
		return "INT64"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Varchar:
		return "STRING"
	case Boolean:
		return "BOOL"
	}
	return "INVALID"
}
