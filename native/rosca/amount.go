package rosca

import "math/big"

// Amount is a signed 128-bit monetary quantity denominated in the smallest
// unit of the underlying asset. It is a thin wrapper around math/big so every
// arithmetic operation on money is checked and overflow is observable,
// mirroring the ray/basis-point checked-arithmetic discipline used
// throughout the lending engine's Supply/Borrow/Liquidate paths.
type Amount struct {
	v *big.Int
}

// int128Min and int128Max bound the signed 128-bit range every monetary
// amount is required to fit within.
var (
	int128Max = func() *big.Int {
		max := new(big.Int).Lsh(big.NewInt(1), 127)
		return max.Sub(max, big.NewInt(1))
	}()
	int128Min = func() *big.Int {
		min := new(big.Int).Lsh(big.NewInt(1), 127)
		return min.Neg(min)
	}()
)

// ZeroAmount returns the additive identity.
func ZeroAmount() *Amount { return &Amount{v: big.NewInt(0)} }

// NewAmount constructs an Amount from an int64, useful for literals in tests
// and call sites.
func NewAmount(v int64) *Amount { return &Amount{v: big.NewInt(v)} }

// AmountFromBigInt adopts a *big.Int as an Amount, cloning it so the caller
// cannot mutate the wrapped value out from under us.
func AmountFromBigInt(v *big.Int) *Amount {
	if v == nil {
		return ZeroAmount()
	}
	return &Amount{v: new(big.Int).Set(v)}
}

func (a *Amount) bigInt() *big.Int {
	if a == nil || a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// Sign returns -1, 0, or 1.
func (a *Amount) Sign() int { return a.bigInt().Sign() }

// Cmp compares two amounts the way big.Int.Cmp does.
func (a *Amount) Cmp(other *Amount) int { return a.bigInt().Cmp(other.bigInt()) }

// BigInt returns a defensive copy of the underlying integer.
func (a *Amount) BigInt() *big.Int { return new(big.Int).Set(a.bigInt()) }

func inRange(v *big.Int) bool {
	return v.Cmp(int128Min) >= 0 && v.Cmp(int128Max) <= 0
}

// CheckedAdd returns a+b, or CodeOverflow if the signed 128-bit range is
// exceeded.
func CheckedAdd(a, b *Amount) (*Amount, error) {
	sum := new(big.Int).Add(a.bigInt(), b.bigInt())
	if !inRange(sum) {
		return nil, newErr(CodeOverflow, "", "amount addition overflow")
	}
	return &Amount{v: sum}, nil
}

// CheckedSub returns a-b, or CodeOverflow if the signed 128-bit range is
// exceeded.
func CheckedSub(a, b *Amount) (*Amount, error) {
	diff := new(big.Int).Sub(a.bigInt(), b.bigInt())
	if !inRange(diff) {
		return nil, newErr(CodeOverflow, "", "amount subtraction overflow")
	}
	return &Amount{v: diff}, nil
}

// CheckedMulUint64 returns a*n, or CodeInternalError if the signed 128-bit
// range is exceeded. Used by the pool calculator to derive
// contribution_amount * member_count.
func CheckedMulUint64(a *Amount, n uint64) (*Amount, error) {
	product := new(big.Int).Mul(a.bigInt(), new(big.Int).SetUint64(n))
	if !inRange(product) {
		return nil, newErr(CodeInternalError, "", "amount multiplication overflow")
	}
	return &Amount{v: product}, nil
}

// String renders the decimal representation.
func (a *Amount) String() string { return a.bigInt().String() }

// checkedAddU64 returns a+b, or CodeOverflow if the uint64 range is
// exceeded. Used for timestamp/duration arithmetic, which is unsigned and
// machine-width rather than the signed 128-bit monetary range Amount
// guards.
func checkedAddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, newErr(CodeOverflow, "", "timestamp addition overflow")
	}
	return sum, nil
}

// checkedMulU64 returns a*b, or CodeOverflow if the uint64 range is
// exceeded.
func checkedMulU64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, newErr(CodeOverflow, "", "timestamp multiplication overflow")
	}
	return product, nil
}
