package registry

import (
	"strings"

	"otelspa-backend/internal/database"
	"otelspa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt string `json:"created_at"`
}

type CreateRegisterRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func toRegisterResponse(r *models.CashRegister) RegisterResponse {
	return RegisterResponse{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// KASA KATALOĞU (sadece super admin)
// ----------------------------------------

func CreateRegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kasa adı boş olamaz")
		}

		reg := models.CashRegister{
			Name:     body.Name,
			Location: strings.TrimSpace(body.Location),
		}

		if err := database.DB.Create(&reg).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toRegisterResponse(&reg))
	}
}

func ListRegistersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var regs []models.CashRegister
		if err := database.DB.Order("id asc").Find(&regs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasalar listelenemedi")
		}

		resp := make([]RegisterResponse, 0, len(regs))
		for i := range regs {
			resp = append(resp, toRegisterResponse(&regs[i]))
		}

		return c.JSON(resp)
	}
}

func GetRegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var reg models.CashRegister
		if err := database.DB.First(&reg, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kasa bulunamadı")
		}

		return c.JSON(toRegisterResponse(&reg))
	}
}
