package courseRoutes

import (
	controllers "learnfront/controllers/course"
	"learnfront/middleware"
	"learnfront/session"
	validators "learnfront/validators/course"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes sets up the public catalog and enrollment routes
func SetupCatalogRoutes(app *fiber.App, limiter *middleware.RateLimiter, enrollPerMinute int) {
	catalogGroup := app.Group("/catalog/courses")
	catalogGroup.Get("/", controllers.ListCourses)
	catalogGroup.Get("/:id", validators.CourseID(), controllers.GetCourse)
	catalogGroup.Post("/:id/enroll", limiter.Limit("enroll", enrollPerMinute, time.Minute), validators.CourseID(), validators.Enroll(), controllers.Enroll)
}

// SetupLearnerRoutes sets up the dashboard and course view routes
func SetupLearnerRoutes(app *fiber.App, sessions *session.Manager) {
	auth := middleware.SessionMiddleware(sessions)
	dashboardCourseID := validators.IDParam("course_id", "courseID", "Course")

	app.Get("/content-types", auth, controllers.ContentTypes)

	dashboardGroup := app.Group("/dashboard", auth)
	dashboardGroup.Get("/", controllers.Dashboard)
	dashboardGroup.Post("/course/:course_id/content/:content_id/complete", dashboardCourseID, validators.ContentID(), controllers.CompleteContent)
	dashboardGroup.Post("/course/:course_id/module/:module_id/complete", dashboardCourseID, validators.ModuleID(), controllers.CompleteModule)

	viewGroup := app.Group("/views/course", auth)
	viewGroup.Post("/:id", validators.CourseID(), controllers.OpenView)
	viewGroup.Get("/:id", validators.CourseID(), controllers.GetView)
	viewGroup.Post("/:id/refresh", validators.CourseID(), controllers.RefreshView)
	viewGroup.Post("/:id/module/:module_id/select", validators.CourseID(), validators.ModuleID(), controllers.SelectModule)
	viewGroup.Post("/:id/contents/refresh", validators.CourseID(), controllers.ReloadContents)
	viewGroup.Delete("/:id/selection", validators.CourseID(), controllers.ClearSelection)
	viewGroup.Delete("/:id", validators.CourseID(), controllers.CloseView)
}
