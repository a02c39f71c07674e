package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"url2pdf/internal/config"
	"url2pdf/internal/domain"
	"url2pdf/internal/infra/chrome"
	log "url2pdf/internal/infra/logging"
)

// RenderFailureMessage is the fixed error text returned when rendering fails.
const RenderFailureMessage = "Erro ao criar PDF"

// Renderer produces a PDF for a URL. Implementations own the browser
// lifecycle and must release it before returning.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// StatsProvider is implemented by renderers that expose usage counters.
type StatsProvider interface {
	Stats() chrome.Stats
}

// PDFService bundles configuration and the renderer used by the conversion endpoint.
type PDFService struct {
	Config   *config.Config
	Renderer Renderer
}

// NewPDFService creates a new PDFService instance.
func NewPDFService(cfg config.Config, r Renderer) *PDFService {
	return &PDFService{Config: &cfg, Renderer: r}
}

// HandleConversion validates the body, renders the URL and answers with the
// raw PDF or a base64 envelope.
func (svc *PDFService) HandleConversion(c *fiber.Ctx) error {
	var req domain.ConversionRequest
	if err := bindJSON(c, &req); err != nil {
		return SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requestID, _ := c.Locals("requestid").(string)

	pdf, err := svc.Renderer.Render(c.UserContext(), req.URL)
	if err != nil {
		log.Error("PDF generation failed",
			"url", req.URL,
			"request_id", requestID,
			"interrupted", chrome.IsSessionInterrupted(err),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   RenderFailureMessage,
			"detalhe": detail(err),
		})
	}

	log.Info("PDF generated", "url", req.URL, "mode", req.Mode().String(), "bytes", len(pdf), "request_id", requestID)

	if req.Mode() == domain.OutputBase64 {
		return c.JSON(domain.Base64Result{
			Success: true,
			Type:    "base64",
			Data:    base64.StdEncoding.EncodeToString(pdf),
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+svc.Config.PDF.Filename+`"`)
	return c.Send(pdf)
}

// detail strips the render sentinel so callers see the underlying cause.
func detail(err error) string {
	if errors.Is(err, domain.ErrRender) {
		return strings.TrimPrefix(err.Error(), domain.ErrRender.Error()+": ")
	}
	return err.Error()
}

// HandleChromeStats exposes renderer usage counters.
func (svc *PDFService) HandleChromeStats(c *fiber.Ctx) error {
	sp, ok := svc.Renderer.(StatsProvider)
	if !ok {
		return c.JSON(chrome.Stats{
			MaxConcurrent: svc.Config.PDF.MaxConcurrent,
			WaitUntil:     svc.Config.PDF.WaitUntil,
			TimeoutSecs:   svc.Config.PDF.TimeoutSecs,
		})
	}
	return c.JSON(sp.Stats())
}
