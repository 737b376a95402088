package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletsvc/wallet_service/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints. Listing every wallet is public;
// everything else requires jwt. /wallets/user is registered ahead of /wallets/:id.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, jwt, idempotency fiber.Handler) {
	r.Get("/wallets", h.List)
	r.Get("/wallets/user", jwt, h.ListMine)
	r.Get("/wallets/:id", jwt, h.Get)
	r.Delete("/wallets/:id", jwt, h.Remove)
	r.Post("/wallets", jwt, idempotency, h.Create)
}
