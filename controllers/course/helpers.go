package controllers

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/modulestore"
	"learnfront/progress"
	"learnfront/renderer"
	"learnfront/services"
	"learnfront/session"

	"github.com/gofiber/fiber/v2"
)

func workspace(c *fiber.Ctx) (*session.Workspace, error) {
	s := middleware.CurrentSession(c)
	if s == nil {
		return nil, session.ErrNoSession
	}
	return s.Workspace(), nil
}

// render resolves items against the session's content type map. A failed
// map load is reported and the items render as loading placeholders.
func render(c *fiber.Ctx, ws *session.Workspace, items []course.Content) []renderer.Display {
	if _, err := ws.Types.Load(c.UserContext()); err != nil {
		ws.Report(err)
	}
	return renderer.RenderAll(items, ws.Types, renderer.Options{MediaBase: services.App.MediaBase})
}

type viewPayload struct {
	modulestore.Snapshot
	Percent  map[uint]int       `json:"percent"`
	Rendered []renderer.Display `json:"rendered"`
}

func viewResponse(c *fiber.Ctx, ws *session.Workspace, store *modulestore.Store, status int, message string) error {
	snap := store.Snapshot()
	percent := make(map[uint]int, len(snap.Modules))
	for _, m := range snap.Modules {
		percent[m.ID] = progress.ComputeModuleProgressPercent(m)
	}
	payload := viewPayload{
		Snapshot: snap,
		Percent:  percent,
		Rendered: render(c, ws, snap.Contents),
	}
	return middleware.JsonResponse(c, status, true, message, payload)
}

func viewNotOpen(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Open this course view first!", nil)
}
