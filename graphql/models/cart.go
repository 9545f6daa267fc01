package models

import "cafe.GO/service/cart"

type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int32    `json:"quantity"`
	Subtotal float64  `json:"subtotal"`
}

type Cart struct {
	Items      []*CartLine `json:"items"`
	TotalItems int32       `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

// CartFromSummary maps a cart snapshot to its GraphQL shape.
func CartFromSummary(s cart.Summary) *Cart {
	out := &Cart{Items: make([]*CartLine, 0, len(s.Items)), TotalItems: int32(s.TotalItems)}
	out.TotalPrice, _ = s.TotalPrice.Float64()
	for _, l := range s.Items {
		sub, _ := l.Subtotal().Float64()
		out.Items = append(out.Items, &CartLine{
			Product:  ProductFromCatalog(l.Product),
			Quantity: int32(l.Quantity),
			Subtotal: sub,
		})
	}
	return out
}
