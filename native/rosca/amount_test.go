package rosca

import (
	"errors"
	"math/big"
	"testing"
)

func TestCheckedAddOverflow(t *testing.T) {
	a := AmountFromBigInt(int128Max)
	_, err := CheckedAdd(a, NewAmount(1))
	if !errors.Is(err, CodeErr(CodeOverflow)) {
		t.Fatalf("expected CodeOverflow, got %v", err)
	}
}

func TestCheckedSubOverflow(t *testing.T) {
	a := AmountFromBigInt(int128Min)
	_, err := CheckedSub(a, NewAmount(1))
	if !errors.Is(err, CodeErr(CodeOverflow)) {
		t.Fatalf("expected CodeOverflow, got %v", err)
	}
}

func TestCheckedAddWithinRange(t *testing.T) {
	sum, err := CheckedAdd(NewAmount(5), NewAmount(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Cmp(NewAmount(12)) != 0 {
		t.Fatalf("expected 12, got %s", sum)
	}
}

func TestCheckedMulUint64(t *testing.T) {
	product, err := CheckedMulUint64(NewAmount(100), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Cmp(NewAmount(500)) != 0 {
		t.Fatalf("expected 500, got %s", product)
	}
}

func TestCheckedMulUint64Overflow(t *testing.T) {
	huge := AmountFromBigInt(new(big.Int).Rsh(int128Max, 1))
	_, err := CheckedMulUint64(huge, 4)
	if !errors.Is(err, CodeErr(CodeInternalError)) {
		t.Fatalf("expected CodeInternalError, got %v", err)
	}
}

func TestZeroAmountIsZero(t *testing.T) {
	if ZeroAmount().Sign() != 0 {
		t.Fatalf("expected zero amount to have sign 0")
	}
}
