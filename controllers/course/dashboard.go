package controllers

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/progress"
	"learnfront/renderer"
	"learnfront/session"

	"github.com/gofiber/fiber/v2"
)

type dashboardModule struct {
	course.Module
	Percent  int                `json:"percent"`
	Contents []renderer.Display `json:"contents"`
}

type dashboardCourse struct {
	course.Course
	Modules []dashboardModule `json:"modules"`
}

func Dashboard(c *fiber.Ctx) error {
	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view, err := ws.Progress.Load(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Dashboard fetched successfully!"
	if view.State == progress.StateInactive {
		message = "Your enrollment is not active yet."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"state":     view.State,
		"is_active": view.Active,
		"courses":   shapeDashboard(c, ws, view.Courses),
	})
}

func shapeDashboard(c *fiber.Ctx, ws *session.Workspace, courses []course.DashboardCourse) []dashboardCourse {
	out := make([]dashboardCourse, 0, len(courses))
	for _, dc := range courses {
		mods := make([]dashboardModule, 0, len(dc.Modules))
		for _, dm := range dc.Modules {
			mods = append(mods, dashboardModule{
				Module:   dm.Module,
				Percent:  progress.ComputeModuleProgressPercent(dm.Module),
				Contents: render(c, ws, dm.Contents),
			})
		}
		out = append(out, dashboardCourse{Course: dc.Course, Modules: mods})
	}
	return out
}

// CompleteContent marks a content item complete. The dashboard is loaded
// first when the item is not in it yet.
func CompleteContent(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	moduleID := moduleOfContent(ws.Progress.View(), courseID, contentID)
	if moduleID == 0 {
		view, err := ws.Progress.Load(c.UserContext())
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		moduleID = moduleOfContent(view, courseID, contentID)
	}
	if moduleID == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found in your dashboard!", nil)
	}

	if err := ws.Progress.MarkContentComplete(c.UserContext(), courseID, moduleID, contentID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content marked as complete!", fiber.Map{
		"course_id":  courseID,
		"module_id":  moduleID,
		"content_id": contentID,
		"percent":    modulePercent(ws.Progress.View(), courseID, moduleID),
	})
}

func CompleteModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	moduleID := c.Locals("moduleID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if modulePercent(ws.Progress.View(), courseID, moduleID) < 0 {
		if _, err := ws.Progress.Load(c.UserContext()); err != nil {
			return middleware.ErrorResponse(c, err)
		}
	}
	if modulePercent(ws.Progress.View(), courseID, moduleID) < 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found in your dashboard!", nil)
	}

	if err := ws.Progress.MarkModuleComplete(c.UserContext(), courseID, moduleID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module marked as complete!", fiber.Map{
		"course_id": courseID,
		"module_id": moduleID,
		"percent":   modulePercent(ws.Progress.View(), courseID, moduleID),
	})
}

func ContentTypes(c *fiber.Ctx) error {
	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	m, err := ws.Types.Load(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content types fetched successfully!", m.Entries())
}

func moduleOfContent(view progress.View, courseID, contentID uint) uint {
	for _, dc := range view.Courses {
		if dc.ID != courseID {
			continue
		}
		for _, dm := range dc.Modules {
			for _, item := range dm.Contents {
				if item.ID == contentID {
					return dm.ID
				}
			}
		}
	}
	return 0
}

// modulePercent is -1 when the module is not on the dashboard
func modulePercent(view progress.View, courseID, moduleID uint) int {
	for _, dc := range view.Courses {
		if dc.ID != courseID {
			continue
		}
		for _, dm := range dc.Modules {
			if dm.ID == moduleID {
				return progress.ComputeModuleProgressPercent(dm.Module)
			}
		}
	}
	return -1
}
