package main

import (
	"log"
	"strings"

	"otelspa-backend/internal/audit"
	"otelspa-backend/internal/auth"
	"otelspa-backend/internal/config"
	"otelspa-backend/internal/database"
	"otelspa-backend/internal/ledger"
	"otelspa-backend/internal/models"
	"otelspa-backend/internal/reconcile"
	"otelspa-backend/internal/registry"
	"otelspa-backend/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Kasa kataloğu
	adminRoutes.Post("/registers", registry.CreateRegisterHandler())
	adminRoutes.Get("/registers", registry.ListRegistersHandler())
	adminRoutes.Get("/registers/:id", registry.GetRegisterHandler())

	// Kasiyer yönetimi
	adminRoutes.Post("/users", auth.CreateCashierHandler())

	// Force-delete (oturum + tüm hareketleri, tek transaction)
	adminRoutes.Delete("/sessions/:id/force", session.ForceDeleteSessionHandler())
	adminRoutes.Get("/force-delete-audits", audit.ListForceDeleteAuditsHandler())

	// Kasa oturumları
	protected.Post("/sessions", session.OpenSessionHandler())
	protected.Get("/sessions", session.ListSessionsHandler())
	protected.Get("/sessions/current", session.GetCurrentSessionHandler())
	protected.Get("/sessions/:id", session.GetSessionHandler())
	protected.Post("/sessions/:id/close", session.CloseSessionHandler())
	protected.Delete("/sessions/:id", session.DeleteSessionHandler())

	// Hareketler (gelir / gider / satın alma)
	protected.Post("/sessions/:id/incomes", ledger.RecordIncomeHandler())
	protected.Post("/sessions/:id/expenses", ledger.RecordExpenseHandler())
	protected.Post("/sessions/:id/purchases", ledger.RecordPurchaseHandler())
	protected.Get("/sessions/:id/entries", ledger.ListEntriesHandler())
	protected.Get("/sessions/:id/summary", ledger.SummaryHandler())

	// Mutabakat raporu (beklenen vs cached bakiye)
	protected.Get("/sessions/:id/reconciliation", reconcile.ReportHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
