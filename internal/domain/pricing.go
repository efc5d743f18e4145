package domain

// TaxAmount computes the flat tax on a subtotal. rateBps is in basis points:
// TaxAmount(10000, 1600) = 1600.
func TaxAmount(subtotal, rateBps int64) int64 {
	return subtotal * rateBps / 10000
}

// Total combines subtotal, tax, shipping cost, and discount into the payable
// amount: subtotal + tax + shipping - discount. The result is deliberately
// not clamped at zero; a discount larger than subtotal+tax+shipping yields a
// negative total, and it is the caller's decision what to do with it.
func Total(subtotal, taxRateBps, shippingCost, discount int64) int64 {
	return subtotal + TaxAmount(subtotal, taxRateBps) + shippingCost - discount
}
