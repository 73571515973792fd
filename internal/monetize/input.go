package monetize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/iho/moneyfield/internal/domain"
)

// InputKind tags the variant held by an Input.
type InputKind int

const (
	InputEmpty InputKind = iota
	InputMoney
	InputInteger
	InputText
)

func (k InputKind) String() string {
	switch k {
	case InputEmpty:
		return "empty"
	case InputMoney:
		return "money"
	case InputInteger:
		return "integer"
	case InputText:
		return "text"
	default:
		return "unknown"
	}
}

// Input is a value assignable to a monetized field. Integer and text
// amounts are in major units of the field's resolved currency.
type Input struct {
	kind    InputKind
	money   domain.Money
	integer int64
	text    string
}

// FromMoney wraps a Money value.
func FromMoney(m domain.Money) Input {
	return Input{kind: InputMoney, money: m}
}

// FromInt wraps a whole major-unit amount.
func FromInt(n int64) Input {
	return Input{kind: InputInteger, integer: n}
}

// FromText wraps a textual major-unit amount such as "25" or "25.50".
func FromText(s string) Input {
	return Input{kind: InputText, text: s}
}

// Empty is the nil input.
func Empty() Input {
	return Input{kind: InputEmpty}
}

// Kind returns the variant tag.
func (in Input) Kind() InputKind {
	return in.kind
}

// InputOf converts a dynamically typed value into an Input.
func InputOf(v any) (Input, error) {
	switch t := v.(type) {
	case nil:
		return Empty(), nil
	case Input:
		return t, nil
	case domain.Money:
		return FromMoney(t), nil
	case *domain.Money:
		if t == nil {
			return Empty(), nil
		}
		return FromMoney(*t), nil
	case int:
		return FromInt(int64(t)), nil
	case int8:
		return FromInt(int64(t)), nil
	case int16:
		return FromInt(int64(t)), nil
	case int32:
		return FromInt(int64(t)), nil
	case int64:
		return FromInt(t), nil
	case uint8:
		return FromInt(int64(t)), nil
	case uint16:
		return FromInt(int64(t)), nil
	case uint32:
		return FromInt(int64(t)), nil
	case uint:
		return fromUnsigned(uint64(t)), nil
	case uint64:
		return fromUnsigned(t), nil
	case decimal.Decimal:
		return FromText(t.String()), nil
	case string:
		return FromText(t), nil
	default:
		return Input{}, fmt.Errorf("%w: cannot assign %T to a monetized attribute", domain.ErrInvalidAssignment, v)
	}
}

func fromUnsigned(n uint64) Input {
	if n > math.MaxInt64 {
		return FromText(strconv.FormatUint(n, 10))
	}
	return FromInt(int64(n))
}
