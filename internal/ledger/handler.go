package ledger

import (
	"fmt"
	"log"

	"otelspa-backend/internal/audit"
	"otelspa-backend/internal/auth"
	"otelspa-backend/internal/cashbox"
	"otelspa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecordEntryRequest struct {
	Amount        float64              `json:"amount"`
	Category      string               `json:"category"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Description   string               `json:"description"`
}

type RecordPurchaseRequest struct {
	Quantity      float64              `json:"quantity"`
	UnitPrice     float64              `json:"unit_price"`
	Category      string               `json:"category"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Description   string               `json:"description"`
}

type EntryResponse struct {
	ID            uint     `json:"id"`
	SessionID     uint     `json:"session_id"`
	Kind          string   `json:"kind"`
	Amount        float64  `json:"amount"`
	Quantity      *float64 `json:"quantity,omitempty"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
	Category      string   `json:"category"`
	PaymentMethod string   `json:"payment_method"`
	Description   string   `json:"description"`
	SignedDelta   float64  `json:"signed_delta"`
	CreatedAt     string   `json:"created_at"`
}

func toEntryResponse(e *models.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		SessionID:     e.SessionID,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		Quantity:      e.Quantity,
		UnitPrice:     e.UnitPrice,
		Category:      e.Category,
		PaymentMethod: string(e.PaymentMethod),
		Description:   e.Description,
		SignedDelta:   e.SignedDelta(),
		CreatedAt:     e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func sessionIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Oturum id geçersiz")
	}
	return id, nil
}

// Gelir ve gider aynı gövdeyi alıyor; tek handler, tür parametre.
func recordHandler(kind models.EntryKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		var body RecordEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var entry *models.LedgerEntry
		switch kind {
		case models.EntryKindIncome:
			entry, err = RecordIncome(sessionID, body.Amount, body.Category, body.PaymentMethod, body.Description)
		default:
			entry, err = RecordExpense(sessionID, body.Amount, body.Category, body.PaymentMethod, body.Description)
		}
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		writeEntryAudit(user, entry)

		return c.Status(fiber.StatusCreated).JSON(toEntryResponse(entry))
	}
}

// -------------------------------------------------
// POST /api/sessions/:id/incomes
// -------------------------------------------------
func RecordIncomeHandler() fiber.Handler {
	return recordHandler(models.EntryKindIncome)
}

// -------------------------------------------------
// POST /api/sessions/:id/expenses
// -------------------------------------------------
func RecordExpenseHandler() fiber.Handler {
	return recordHandler(models.EntryKindExpense)
}

// -------------------------------------------------
// POST /api/sessions/:id/purchases
// -------------------------------------------------
func RecordPurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		var body RecordPurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		entry, err := RecordPurchase(sessionID, body.Quantity, body.UnitPrice, body.Category, body.PaymentMethod, body.Description)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		writeEntryAudit(user, entry)

		return c.Status(fiber.StatusCreated).JSON(toEntryResponse(entry))
	}
}

func writeEntryAudit(user *models.User, entry *models.LedgerEntry) {
	if logErr := audit.WriteLog(audit.LogOptions{
		UserID:      user.ID,
		UserName:    user.Name,
		EntityType:  "ledger_entry",
		EntityID:    entry.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Hareket eklendi: %s %.2f (oturum S%d)", entry.Kind, entry.Amount, entry.SessionID),
		After:       toEntryResponse(entry),
	}); logErr != nil {
		// Log hatası kritik değil, sadece log'la
		log.Printf("Audit log yazılamadı: %v", logErr)
	}
}

// -------------------------------------------------
// GET /api/sessions/:id/entries?kind=expense
// -------------------------------------------------
func ListEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		kind := models.EntryKind(c.Query("kind"))

		entries, err := ListEntries(sessionID, kind)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		resp := make([]EntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, toEntryResponse(&entries[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/sessions/:id/summary
// -------------------------------------------------
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionIDParam(c)
		if err != nil {
			return err
		}

		sum, err := BuildSummary(sessionID)
		if err != nil {
			return cashbox.ToFiber(c, err)
		}

		return c.JSON(sum)
	}
}
