package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletsvc/wallet_service/internal/respond"
)

// Handler exposes auth endpoints for register/login.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Register handles user onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := respond.Bind(c, &req); err != nil {
		return respond.Error(c, err, msgRegisterError)
	}
	return respond.Render(c, h.svc.Register(c.UserContext(), req.PhoneNumber, req.Password))
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := respond.Bind(c, &req); err != nil {
		return respond.Error(c, err, msgLoginError)
	}
	return respond.Render(c, h.svc.Login(c.UserContext(), req.PhoneNumber, req.Password))
}
