package wallet

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletsvc/wallet_service/internal/middleware"
	"github.com/walletsvc/wallet_service/internal/respond"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name" validate:"required"`
	Type          string `json:"type" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required"`
	AccountScheme string `json:"accountScheme" validate:"required"`
	Owner         string `json:"owner" validate:"required"`
}

// Create provisions a wallet for the authenticated owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := respond.Bind(c, &req); err != nil {
		return respond.Error(c, err, msgCreateError)
	}
	in := CreateInput{
		Name:          req.Name,
		Type:          req.Type,
		AccountNumber: req.AccountNumber,
		AccountScheme: req.AccountScheme,
		Owner:         req.Owner,
	}
	return respond.Render(c, h.service.Create(c.UserContext(), in, middleware.Caller(c)))
}

// Get returns one of the caller's wallets.
func (h *Handler) Get(c *fiber.Ctx) error {
	return respond.Render(c, h.service.Get(c.UserContext(), c.Params("id"), middleware.Caller(c)))
}

// Remove deletes one of the caller's wallets.
func (h *Handler) Remove(c *fiber.Ctx) error {
	return respond.Render(c, h.service.Remove(c.UserContext(), c.Params("id"), middleware.Caller(c)))
}

// List pages over every wallet. Missing query values fall back to page 1 of 10.
func (h *Handler) List(c *fiber.Ctx) error {
	return respond.Render(c, h.service.List(c.UserContext(),
		c.QueryInt("pageNumber", defaultPageNumber),
		c.QueryInt("pageSize", defaultPageSize)))
}

// ListMine pages over the caller's wallets.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	return respond.Render(c, h.service.ListForOwner(c.UserContext(), middleware.Caller(c),
		c.QueryInt("pageNumber", defaultPageNumber),
		c.QueryInt("pageSize", defaultPageSize)))
}
