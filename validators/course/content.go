package courseValidator

import (
	"learnfront/contenttype"
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/utils"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ContentForm reads a multipart or urlencoded content form: kind, title,
// text, url and an optional file part. Per-kind rules are left to the
// authoring workspace.
func ContentForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		kindName := strings.TrimSpace(c.FormValue("kind"))
		kind := contenttype.ParseKind(kindName)
		if kindName == "" {
			errors["kind"] = "Content kind is required!"
		} else if kind == contenttype.KindUnknown {
			errors["kind"] = "Kind must be one of: text, image, video, file!"
		}

		reqData := &course.ContentInput{
			Title: strings.TrimSpace(c.FormValue("title")),
			Text:  c.FormValue("text"),
			URL:   strings.TrimSpace(c.FormValue("url")),
		}
		if len(reqData.Title) > 255 {
			errors["title"] = "Title must not exceed 255 characters!"
		}

		if fh, err := c.FormFile("file"); err == nil {
			upload, err := utils.ReadUploadedFile(fh)
			switch {
			case err == utils.ErrUploadTooLarge:
				errors["file"] = "File must not exceed 32 MB!"
			case err != nil:
				errors["file"] = "Could not read the uploaded file!"
			default:
				reqData.Upload = upload
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		c.Locals("contentKind", kind)
		return c.Next()
	}
}
