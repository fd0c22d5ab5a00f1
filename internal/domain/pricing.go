package domain

// ShippingMethod — способ доставки заказа.
type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// Стоимости доставки в центах.
const (
	shippingStandardMinor  int64 = 599
	shippingExpressMinor   int64 = 1299
	shippingOvernightMinor int64 = 1999
)

// taxRatePercent — ставка налога с продаж, процентов от subtotal.
const taxRatePercent int64 = 8

// loyaltyPointDivisorMinor — центов товарного subtotal на один балл лояльности.
const loyaltyPointDivisorMinor int64 = 1000

// ShippingCostMinor возвращает стоимость доставки для способа.
// Неизвестный способ тарифицируется как standard, без ошибки.
func ShippingCostMinor(method ShippingMethod) int64 {
	switch method {
	case ShippingExpress:
		return shippingExpressMinor
	case ShippingOvernight:
		return shippingOvernightMinor
	default:
		return shippingStandardMinor
	}
}

// TaxMinorFor считает налог от subtotal с округлением до цента (half up).
func TaxMinorFor(subtotalMinor int64) int64 {
	return (subtotalMinor*taxRatePercent + 50) / 100
}

// LoyaltyPointsForItem считает баллы за позицию: floor(qty*price/$10).
// Округление вниз выполняется на каждой позиции отдельно, а не на итоге
// заказа — так клиент никогда не получает баллы за «склейку» остатков.
func LoyaltyPointsForItem(qty int32, unitPriceMinor int64) int64 {
	return int64(qty) * unitPriceMinor / loyaltyPointDivisorMinor
}

// RefundMinorFor считает сумму возврата по количеству и цене позиции.
// Суммы в центах, поэтому дополнительного округления не требуется.
func RefundMinorFor(qty int32, unitPriceMinor int64) int64 {
	return int64(qty) * unitPriceMinor
}
