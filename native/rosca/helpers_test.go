package rosca

import "roscachain/crypto"

func testAddr(seed byte) crypto.Address {
	b := make([]byte, 20)
	b[19] = seed
	return crypto.MustNewAddress(crypto.RoscaPrefix, b)
}
