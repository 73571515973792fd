package monetize

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/moneyfield/internal/domain"
)

func TestInputOf(t *testing.T) {
	usd := domain.Currency{Code: "USD", Exponent: 2}
	money := domain.NewMoney(2500, usd)
	var nilMoney *domain.Money

	tests := []struct {
		name     string
		value    any
		wantKind InputKind
		check    func(t *testing.T, in Input)
	}{
		{name: "nil", value: nil, wantKind: InputEmpty},
		{name: "nil money pointer", value: nilMoney, wantKind: InputEmpty},
		{name: "money", value: money, wantKind: InputMoney, check: func(t *testing.T, in Input) {
			if in.money != money {
				t.Errorf("expected %v, got %v", money, in.money)
			}
		}},
		{name: "money pointer", value: &money, wantKind: InputMoney},
		{name: "int", value: 25, wantKind: InputInteger, check: func(t *testing.T, in Input) {
			if in.integer != 25 {
				t.Errorf("expected 25, got %d", in.integer)
			}
		}},
		{name: "int16", value: int16(-4), wantKind: InputInteger},
		{name: "uint32", value: uint32(4), wantKind: InputInteger},
		{name: "huge uint64 becomes text", value: uint64(math.MaxUint64), wantKind: InputText},
		{name: "string", value: "25", wantKind: InputText, check: func(t *testing.T, in Input) {
			if in.text != "25" {
				t.Errorf("expected \"25\", got %q", in.text)
			}
		}},
		{name: "decimal", value: decimal.RequireFromString("12.34"), wantKind: InputText, check: func(t *testing.T, in Input) {
			if in.text != "12.34" {
				t.Errorf("expected \"12.34\", got %q", in.text)
			}
		}},
		{name: "input passes through", value: FromInt(3), wantKind: InputInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := InputOf(tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Kind() != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, in.Kind())
			}
			if tt.check != nil {
				tt.check(t, in)
			}
		})
	}
}

func TestInputOfRejectsOtherTypes(t *testing.T) {
	for _, v := range []any{1.5, float32(2), true, struct{}{}, []int{1}} {
		if _, err := InputOf(v); !errors.Is(err, domain.ErrInvalidAssignment) {
			t.Errorf("InputOf(%T): expected ErrInvalidAssignment, got %v", v, err)
		}
	}
}

func TestInputKindString(t *testing.T) {
	want := map[InputKind]string{
		InputEmpty:    "empty",
		InputMoney:    "money",
		InputInteger:  "integer",
		InputText:     "text",
		InputKind(42): "unknown",
	}
	for kind, s := range want {
		if kind.String() != s {
			t.Errorf("expected %q, got %q", s, kind.String())
		}
	}
}
