package courseValidator

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/utils"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CourseForm reads the tutor's course form with an optional "image" cover
// part. A new course needs a title and either a "subject" id or a
// "subject_title" for a new subject; an edit may leave them out.
func CourseForm(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		reqData := &course.CourseInput{
			Title:        strings.TrimSpace(c.FormValue("title")),
			Overview:     strings.TrimSpace(c.FormValue("overview")),
			SubjectTitle: strings.TrimSpace(c.FormValue("subject_title")),
		}

		if raw := strings.TrimSpace(c.FormValue("subject")); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				errors["subject"] = "Invalid subject ID!"
			} else {
				subject := uint(id)
				reqData.Subject = &subject
			}
		} else if create && reqData.SubjectTitle == "" {
			errors["subject"] = "Choose a subject or name a new one!"
		}
		if len(reqData.SubjectTitle) > 200 {
			errors["subject_title"] = "Subject title must not exceed 200 characters!"
		}

		if reqData.Title != "" {
			checkTitle(errors, reqData.Title)
		} else if create {
			errors["title"] = "Title is required!"
		}
		if len(reqData.Overview) > 5000 {
			errors["overview"] = "Overview must not exceed 5000 characters!"
		}

		if fh, err := c.FormFile("image"); err == nil {
			upload, err := utils.ReadUploadedFile(fh)
			switch {
			case err == utils.ErrUploadTooLarge:
				errors["image"] = "Image must not exceed 32 MB!"
			case err != nil:
				errors["image"] = "Could not read the uploaded image!"
			default:
				reqData.Cover = upload
			}
		}

		if !create && reqData.Title == "" && reqData.Overview == "" && reqData.Subject == nil && reqData.SubjectTitle == "" && reqData.Cover == nil {
			errors["course"] = "Nothing to update!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}
