package server

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/joseph-ayodele/labreport-import/constants"
)

// HTTPServer exposes the same extraction over a multipart upload endpoint.
type HTTPServer struct {
	app    *fiber.App
	proc   Extractor
	logger *slog.Logger
}

func NewHTTPServer(proc Extractor, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPServer{
		app: fiber.New(fiber.Config{
			AppName:               "labimport",
			BodyLimit:             constants.MaxUploadBytes + 1<<20, // form overhead
			DisableStartupMessage: true,
		}),
		proc:   proc,
		logger: logger,
	}
	s.app.Get("/health", s.health)
	s.app.Post("/v1/reports/extract", s.extract)
	return s
}

func (s *HTTPServer) App() *fiber.App { return s.app }

func (s *HTTPServer) Listen(addr string) error { return s.app.Listen(addr) }

func (s *HTTPServer) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

func (s *HTTPServer) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// extract expects a multipart form with a "file" part and an optional "label".
func (s *HTTPServer) extract(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if file.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is empty"})
	}
	if file.Size > constants.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file is too large"})
	}
	fh, err := file.Open()
	if err != nil {
		s.logger.Error("server.http.open_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}
	defer func() { _ = fh.Close() }()
	pdf, err := io.ReadAll(fh)
	if err != nil {
		s.logger.Error("server.http.read_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	start := time.Now()
	res := s.proc.Extract(c.UserContext(), pdf, strings.TrimSpace(c.FormValue("label")))
	s.logger.Info("server.extract.ok",
		"transport", "http",
		"file", file.Filename,
		"bytes", len(pdf),
		"strategy", res.Strategy,
		"values", len(res.Values),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return c.JSON(NewResultView(res))
}
