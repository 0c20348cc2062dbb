package handlers

import (
	"strings"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/metrics"
	"github.com/arzan03/PalavraDoDia/internal/middleware"
	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/arzan03/PalavraDoDia/internal/services"
	"github.com/gofiber/fiber/v2"
)

const msgDeleted = "Palavra excluída com sucesso"

type WordHandler struct {
	entries *services.EntryService
	metrics *metrics.Metrics
}

func NewWordHandler(entries *services.EntryService, m *metrics.Metrics) *WordHandler {
	return &WordHandler{entries: entries, metrics: m}
}

func actingAccount(c *fiber.Ctx) (*models.Account, error) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return account, nil
}

func (h *WordHandler) Create(c *fiber.Ctx) error {
	account, err := actingAccount(c)
	if err != nil {
		return err
	}

	var input models.EntryInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody()
	}

	entry, err := h.entries.Create(c.UserContext(), input, account.ID)
	if err != nil {
		return err
	}
	h.metrics.EntryMutation("create")
	return respond(c, fiber.StatusCreated, entry)
}

// List handles page, limit, status, language, search, startDate and endDate
// query parameters.
func (h *WordHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	page := models.Pagination{
		Page:  c.QueryInt("page", models.DefaultPage),
		Limit: c.QueryInt("limit", models.DefaultLimit),
	}

	result, err := h.entries.List(c.UserContext(), filter, page)
	if err != nil {
		return err
	}

	return c.JSON(PageEnvelope{
		Success:     true,
		Data:        result.Items,
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
		TotalItems:  result.Total,
	})
}

func parseFilter(c *fiber.Ctx) (models.EntryFilter, error) {
	filter := models.EntryFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Language: strings.TrimSpace(c.Query("language")),
		Search:   c.Query("search"),
	}

	var errs []models.FieldError
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filter.From},
		{"endDate", &filter.To},
	} {
		raw := strings.TrimSpace(c.Query(q.name))
		if raw == "" {
			continue
		}
		t, err := models.ParseDate(raw)
		if err != nil {
			errs = append(errs, models.FieldError{Field: q.name, Message: "data inválida"})
			continue
		}
		*q.dst = &t
	}
	return filter, models.NewValidationError("Parâmetros de busca inválidos", errs)
}

func (h *WordHandler) Get(c *fiber.Ctx) error {
	entry, err := h.entries.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, entry)
}

func (h *WordHandler) Update(c *fiber.Ctx) error {
	account, err := actingAccount(c)
	if err != nil {
		return err
	}

	var patch models.EntryPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody()
	}

	entry, err := h.entries.Update(c.UserContext(), c.Params("id"), patch, account.ID)
	if err != nil {
		return err
	}
	h.metrics.EntryMutation("update")
	return respond(c, fiber.StatusOK, entry)
}

func (h *WordHandler) Delete(c *fiber.Ctx) error {
	if err := h.entries.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	h.metrics.EntryMutation("delete")
	return c.JSON(Envelope{Success: true, Message: msgDeleted})
}

// UploadImage stores the multipart "image" field as the entry's word or
// reflection picture.
func (h *WordHandler) UploadImage(c *fiber.Ctx) error {
	account, err := actingAccount(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return &models.ValidationError{
			Message: "Imagem inválida",
			Fields:  []models.FieldError{{Field: "image", Message: "arquivo não enviado"}},
		}
	}
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	entry, err := h.entries.SetImage(c.UserContext(), c.Params("id"), c.Params("kind"), services.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
		Body:        file,
	}, account.ID)
	if err != nil {
		return err
	}
	h.metrics.EntryMutation("image")
	return respond(c, fiber.StatusOK, entry)
}
