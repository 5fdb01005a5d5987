package order

import "github.com/jasonlau05/bookstore/model"

type PlaceOrderReq struct {
	Items []model.CartLine `json:"items" validate:"required,min=1,dive"`
}

type StatusReq struct {
	Status model.OrderStatus `json:"status" validate:"required,eq=paid"`
}
