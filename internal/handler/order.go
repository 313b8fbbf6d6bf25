package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/oapi-codegen/runtime"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/service"
)

// PlaceOrder handles POST /events/{eventID}/orders.
func (s *Server) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var body placeOrderRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req := service.PlaceOrderRequest{
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		Answers:       body.Answers,
		Items:         make([]service.CartLine, len(body.Items)),
	}
	for i, it := range body.Items {
		req.Items[i] = service.CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	order, err := s.checkout.PlaceOrder(r.Context(), eventID, req)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, orderToResponse(order))
}

// ListOrders handles GET /events/{eventID}/orders.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)

	orders, total, err := s.orders.ListByEvent(r.Context(), eventID, params)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	data := make([]OrderResponse, len(orders))
	for i, o := range orders {
		data[i] = orderToResponse(o)
	}
	render.JSON(w, r, OrderPage{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total), Pages: params.Pages(total)},
	})
}

// GetOrder handles GET /orders/{orderID}.
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}
	o, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "order")
		return
	}
	render.JSON(w, r, orderToResponse(o))
}

// UpdateOrderStatus handles PATCH /orders/{orderID}/status.
func (s *Server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}
	var body statusRequest
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		s.writeError(w, r, err, "order")
		return
	}
	render.JSON(w, r, orderToResponse(o))
}

// UpdateOrderAnswers handles PUT /orders/{orderID}/answers.
func (s *Server) UpdateOrderAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}
	var body answersRequest
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := s.orders.UpdateAnswers(r.Context(), id, body.Answers)
	if err != nil {
		s.writeError(w, r, err, "order")
		return
	}
	render.JSON(w, r, orderToResponse(o))
}
