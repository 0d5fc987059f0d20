package courseRoutes

import (
	controllers "learnfront/controllers/course"
	"learnfront/middleware"
	"learnfront/session"
	validators "learnfront/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupTutorRoutes sets up all tutor authoring routes
func SetupTutorRoutes(app *fiber.App, sessions *session.Manager) {
	tutorGroup := app.Group("/tutor", middleware.SessionMiddleware(sessions), middleware.RequireRole(session.RoleTutor))

	// Course CRUD
	tutorGroup.Get("/subjects", controllers.TutorListSubjects)
	tutorGroup.Get("/course", controllers.TutorMyCourses)
	tutorGroup.Post("/course", validators.CourseForm(true), controllers.TutorCreateCourse)
	tutorGroup.Put("/course/:id", validators.CourseID(), validators.CourseForm(false), controllers.TutorUpdateCourse)
	tutorGroup.Delete("/course/:id", validators.CourseID(), controllers.TutorDeleteCourse)

	// Module Management
	tutorGroup.Post("/course/:id/module", validators.CourseID(), validators.CreateModule(), controllers.TutorCreateModule)
	tutorGroup.Put("/course/:id/module/:module_id", validators.CourseID(), validators.ModuleID(), validators.UpdateModule(), controllers.TutorUpdateModule)
	tutorGroup.Delete("/course/:id/module/:module_id", validators.CourseID(), validators.ModuleID(), controllers.TutorDeleteModule)

	// Content Management
	tutorGroup.Post("/module/:module_id/content", validators.ModuleID(), validators.ContentForm(), controllers.TutorCreateContent)
	tutorGroup.Put("/module/:module_id/content/:content_id", validators.ModuleID(), validators.ContentID(), validators.ContentForm(), controllers.TutorUpdateContent)
	tutorGroup.Delete("/module/:module_id/content/:content_id", validators.ModuleID(), validators.ContentID(), controllers.TutorDeleteContent)

	// Test builder
	tutorGroup.Get("/module/:module_id/test/questions", validators.ModuleID(), controllers.TutorListQuestions)
	tutorGroup.Post("/module/:module_id/test/questions", validators.ModuleID(), validators.AddQuestion(), controllers.TutorAddQuestion)
	tutorGroup.Delete("/module/:module_id/test/questions/:index", validators.ModuleID(), validators.QuestionIndex(), controllers.TutorRemoveQuestion)
	tutorGroup.Post("/module/:module_id/test", validators.ModuleID(), validators.SubmitTest(), controllers.TutorSubmitTest)

	// Students
	tutorGroup.Get("/course/:id/students", validators.CourseID(), controllers.TutorListStudents)
	tutorGroup.Post("/course/:id/students/:student_id/:action", validators.CourseID(), validators.StudentID(), validators.StudentAction(), controllers.TutorSetStudent)
}
