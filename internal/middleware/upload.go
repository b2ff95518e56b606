package middleware

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadedImageKey is the request-local key under which the gateway stores
// the generated filename of an accepted upload.
const UploadedImageKey = "uploadedImage"

// UploadRejectedError signals that an uploaded file's media type is not
// among the accepted set. It is raised before the handler runs.
type UploadRejectedError struct {
	Message string
}

func (e *UploadRejectedError) Error() string {
	return e.Message
}

// acceptedImageTypes are the media types the gateway lets through.
var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UploadProductImage is a Fiber middleware that accepts a single optional
// multipart file field named "productImage". An accepted file is persisted
// to uploadDir under a generated unique filename, which is exposed to the
// handler via c.Locals(UploadedImageKey). A request without a file passes
// through untouched; whether that is an error is the handler's call.
func UploadProductImage(uploadDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("productImage")
		if err != nil {
			// No file attached.
			return c.Next()
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if !acceptedImageTypes[contentType] {
			return &UploadRejectedError{Message: "Invalid format (JPEG or PNG only)"}
		}

		// Filename mirrors the original scheme: unique id + media subtype.
		extension := strings.TrimPrefix(contentType, "image/")
		filename := fmt.Sprintf("%s.%s", uuid.New().String(), extension)

		if err := c.SaveFile(fileHeader, filepath.Join(uploadDir, filename)); err != nil {
			return fmt.Errorf("failed to save uploaded image: %w", err)
		}

		c.Locals(UploadedImageKey, filename)
		return c.Next()
	}
}
