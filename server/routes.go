package main

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/sankey"
	"github.com/meikuraledutech/sankey/render"
)

const ownerHeader = "X-Owner-ID"

type sessionView struct {
	ID        string         `json:"session_id"`
	DiagramID string         `json:"diagram_id,omitempty"`
	Diagram   sankey.Diagram `json:"diagram"`
}

func viewOf(id string, s *session) sessionView {
	return sessionView{ID: id, DiagramID: s.diagramID, Diagram: s.editor.Diagram()}
}

// statusFor maps an error to its HTTP status. Anything unrecognised is a
// server-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sankey.ErrCycleRejected):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, sankey.ErrInvalidPosition),
		errors.Is(err, sankey.ErrInvalidValue),
		errors.Is(err, sankey.ErrInvalidEndpoint),
		errors.Is(err, sankey.ErrNameRequired):
		return fiber.StatusBadRequest
	case errors.Is(err, sankey.ErrLinkNotFound),
		errors.Is(err, sankey.ErrDiagramNotFound),
		errors.Is(err, errSessionNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func newApp(store sankey.Store, sessions *sessionCache, logger *log.Logger) *fiber.App {
	app := fiber.New()

	app.Use(func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request", "method", c.Method(), "path", c.Path(),
			"status", c.Response().StatusCode(), "took", time.Since(start))
		return err
	})

	// fail writes err as JSON. Store failures are logged and reported with
	// msg only; their details stay server-side.
	fail := func(c fiber.Ctx, err error, msg string) error {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			logger.Error(msg, "path", c.Path(), "err", err)
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}
		body := fiber.Map{"error": err.Error()}
		var ce *sankey.CycleError
		if errors.As(err, &ce) {
			body["cycle"] = ce.Path
		}
		return c.Status(status).JSON(body)
	}

	invalidBody := func(c fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	requireOwner := func(c fiber.Ctx) error {
		owner := c.Get(ownerHeader)
		if owner == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing " + ownerHeader})
		}
		c.Locals("owner", owner)
		return c.Next()
	}
	ownerOf := func(c fiber.Ctx) string {
		owner, _ := c.Locals("owner").(string)
		return owner
	}

	// withSession runs fn with the session's editor locked.
	withSession := func(c fiber.Ctx, fn func(s *session) error) error {
		s, err := sessions.get(ownerOf(c), c.Params("sid"))
		if err != nil {
			return fail(c, err, "")
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s)
	}

	intParam := func(c fiber.Ctx, name string) (int, bool) {
		v, err := strconv.Atoi(c.Params(name))
		return v, err == nil
	}

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return fail(c, err, "failed to create schema")
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return fail(c, err, "failed to drop schema")
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Validation ────────────────────────────────────────────────────
	app.Post("/validate", func(c fiber.Ctx) error {
		var d sankey.Diagram
		if err := c.Bind().JSON(&d); err != nil {
			return invalidBody(c)
		}
		if err := sankey.Validate(&d); err != nil {
			body := fiber.Map{"valid": false, "error": err.Error()}
			var ce *sankey.CycleError
			if errors.As(err, &ce) {
				body["cycle"] = ce.Path
			}
			return c.Status(statusFor(err)).JSON(body)
		}
		return c.JSON(fiber.Map{"valid": true})
	})

	// ── Stored diagrams ───────────────────────────────────────────────
	diagrams := app.Group("/diagrams", requireOwner)

	diagrams.Get("", func(c fiber.Ctx) error {
		list, err := store.ListDiagrams(c.Context(), ownerOf(c))
		if err != nil {
			return fail(c, err, "failed to fetch diagrams")
		}
		return c.JSON(list)
	})

	diagrams.Get("/:id", func(c fiber.Ctx) error {
		d, err := store.GetDiagram(c.Context(), ownerOf(c), c.Params("id"))
		if err != nil {
			return fail(c, err, "failed to load diagram")
		}
		return c.JSON(d)
	})

	diagrams.Delete("/:id", func(c fiber.Ctx) error {
		if err := store.DeleteDiagram(c.Context(), ownerOf(c), c.Params("id")); err != nil {
			return fail(c, err, "failed to delete diagram")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// ── Editing sessions ──────────────────────────────────────────────
	sess := app.Group("/sessions", requireOwner)

	sess.Post("", func(c fiber.Ctx) error {
		var req struct {
			DiagramID string `json:"diagram_id"`
		}
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return invalidBody(c)
			}
		}

		editor := sankey.NewEditor()
		if req.DiagramID != "" {
			saved, err := store.GetDiagram(c.Context(), ownerOf(c), req.DiagramID)
			if err != nil {
				return fail(c, err, "failed to load diagram")
			}
			if editor, err = sankey.Open(&saved.Diagram); err != nil {
				return fail(c, err, "failed to load diagram")
			}
		}

		id, s := sessions.open(ownerOf(c), req.DiagramID, editor)
		return c.Status(fiber.StatusCreated).JSON(viewOf(id, s))
	})

	sess.Get("/:sid", func(c fiber.Ctx) error {
		return withSession(c, func(s *session) error {
			return c.JSON(viewOf(c.Params("sid"), s))
		})
	})

	sess.Delete("/:sid", func(c fiber.Ctx) error {
		if err := sessions.close(ownerOf(c), c.Params("sid")); err != nil {
			return fail(c, err, "")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	sess.Put("/:sid/name", func(c fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.Bind().JSON(&req); err != nil {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			s.editor.SetName(req.Name)
			return c.JSON(viewOf(c.Params("sid"), s))
		})
	})

	// Nodes
	sess.Post("/:sid/nodes", func(c fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return invalidBody(c)
			}
		}
		return withSession(c, func(s *session) error {
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"nodes": s.editor.AddNode(req.Name)})
		})
	})

	sess.Put("/:sid/nodes/:pos", func(c fiber.Ctx) error {
		pos, ok := intParam(c, "pos")
		var req struct {
			Name string `json:"name"`
		}
		if err := c.Bind().JSON(&req); err != nil || !ok {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			nodes, err := s.editor.RenameNode(pos, req.Name)
			if err != nil {
				return fail(c, err, "")
			}
			return c.JSON(fiber.Map{"nodes": nodes})
		})
	})

	sess.Delete("/:sid/nodes/:pos", func(c fiber.Ctx) error {
		pos, ok := intParam(c, "pos")
		if !ok {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			nodes, links, err := s.editor.RemoveNode(pos)
			if err != nil {
				return fail(c, err, "")
			}
			return c.JSON(fiber.Map{"nodes": nodes, "links": links})
		})
	})

	// Links
	sess.Post("/:sid/links", func(c fiber.Ctx) error {
		// Omitted fields fall back to the editor's default link 0 -> 1 of weight 1.
		var req struct {
			Source *int     `json:"source"`
			Target *int     `json:"target"`
			Value  *float64 `json:"value"`
		}
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return invalidBody(c)
			}
		}
		source, target, value := 0, 1, 1.0
		if req.Source != nil {
			source = *req.Source
		}
		if req.Target != nil {
			target = *req.Target
		}
		if req.Value != nil {
			value = *req.Value
		}
		return withSession(c, func(s *session) error {
			links, err := s.editor.AddLink(source, target, value)
			if err != nil {
				return fail(c, err, "")
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"links": links})
		})
	})

	sess.Put("/:sid/links/:idx/endpoint", func(c fiber.Ctx) error {
		idx, ok := intParam(c, "idx")
		var req struct {
			Field    sankey.Endpoint `json:"field"`
			Position int             `json:"position"`
		}
		if err := c.Bind().JSON(&req); err != nil || !ok {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			links, err := s.editor.EditLinkEndpoint(idx, req.Field, req.Position)
			if err != nil {
				return fail(c, err, "")
			}
			return c.JSON(fiber.Map{"links": links})
		})
	})

	sess.Put("/:sid/links/:idx/value", func(c fiber.Ctx) error {
		idx, ok := intParam(c, "idx")
		var req struct {
			Value *float64 `json:"value"`
		}
		if err := c.Bind().JSON(&req); err != nil || !ok || req.Value == nil {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			links, err := s.editor.EditLinkValue(idx, *req.Value)
			if err != nil {
				return fail(c, err, "")
			}
			return c.JSON(fiber.Map{"links": links})
		})
	})

	sess.Delete("/:sid/links/:idx", func(c fiber.Ctx) error {
		idx, ok := intParam(c, "idx")
		if !ok {
			return invalidBody(c)
		}
		return withSession(c, func(s *session) error {
			links, err := s.editor.RemoveLink(idx)
			if err != nil {
				return fail(c, err, "")
			}
			return c.JSON(fiber.Map{"links": links})
		})
	})

	// Persistence and export
	sess.Post("/:sid/save", func(c fiber.Ctx) error {
		return withSession(c, func(s *session) error {
			d := s.editor.Diagram()
			saved, err := store.SaveDiagram(c.Context(), s.owner, &d)
			if err != nil {
				return fail(c, err, "failed to save diagram")
			}
			s.diagramID = saved.ID
			logger.Info("diagram saved", "id", saved.ID, "name", saved.Name,
				"nodes", len(saved.Nodes), "links", len(saved.Links))
			return c.JSON(saved)
		})
	})

	sess.Get("/:sid/export", func(c fiber.Ctx) error {
		format := c.Query("format", "svg")
		if format != "svg" && format != "png" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be svg or png"})
		}
		return withSession(c, func(s *session) error {
			d := s.editor.Diagram()
			layout, err := render.Compute(d, render.Options{Title: d.Name})
			if err != nil {
				return fail(c, err, "failed to export diagram")
			}

			var buf bytes.Buffer
			if format == "png" {
				err = render.WritePNG(&buf, layout)
				c.Set(fiber.HeaderContentType, "image/png")
			} else {
				err = render.WriteSVG(&buf, layout)
				c.Set(fiber.HeaderContentType, "image/svg+xml")
			}
			if err != nil {
				return fail(c, err, "failed to export diagram")
			}
			c.Attachment(render.Filename(d.Name, format))
			return c.Send(buf.Bytes())
		})
	})

	return app
}
