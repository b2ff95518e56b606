package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"clothingstore/internal/middleware"
	"clothingstore/internal/models"
	"clothingstore/internal/services"
)

// ProductHandler handles HTTP requests for products. Failures are returned
// as errors and shaped by the centralized error handler.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The
// uploadImage middleware (the upload gateway) guards the mutating routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, uploadImage fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", uploadImage, h.HandleCreateProduct)
	productRoutes.Put("/:id", uploadImage, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// formValues collects the text fields of the request body. Multipart is the
// normal case; urlencoded bodies are accepted too.
func formValues(c *fiber.Ctx) map[string][]string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		return form.Value
	}
	values := make(map[string][]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})
	return values
}

func formValue(values map[string][]string, key string) (string, bool) {
	if fieldValues, ok := values[key]; ok && len(fieldValues) > 0 {
		return fieldValues[0], true
	}
	return "", false
}

// parseProductInput reads the product form fields, keeping track of which
// were actually supplied so updates stay partial. Unparseable numbers are
// reported as validation messages.
func parseProductInput(c *fiber.Ctx) (models.ProductInput, []string) {
	values := formValues(c)

	var input models.ProductInput
	var problems []string

	if v, ok := formValue(values, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(values, "category"); ok {
		input.Category = &v
	}
	if v, ok := formValue(values, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, "Price must be a number")
		} else {
			input.Price = &price
		}
	}
	if v, ok := formValue(values, "value"); ok {
		value, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, "Value must be a number")
		} else {
			input.Value = &value
		}
	}
	if v, ok := formValue(values, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, "Stock must be a whole number")
		} else {
			input.Stock = &stock
		}
	}
	if v, ok := formValue(values, "description"); ok {
		input.Description = &v
	}

	return input, problems
}

// uploadedImage returns the filename the upload gateway stored for this
// request, or empty when no file was attached.
func uploadedImage(c *fiber.Ctx) string {
	filename, _ := c.Locals(middleware.UploadedImageKey).(string)
	return filename
}

// HandleCreateProduct creates a new product from a multipart form.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, problems := parseProductInput(c)
	if len(problems) > 0 {
		return &services.ValidationError{Messages: problems}
	}

	product, err := h.service.CreateProduct(input, uploadedImage(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleListProducts returns one page of products with pagination metadata.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	query := services.ProductQuery{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	page, err := h.service.ListProducts(query, c.BaseURL())
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"), c.BaseURL())
	if err != nil {
		return err
	}

	return c.JSON(product)
}

// HandleUpdateProduct updates an existing product. Fields not supplied are
// left untouched; without a new file the stored image carries over.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	input, problems := parseProductInput(c)
	if len(problems) > 0 {
		return &services.ValidationError{Messages: problems}
	}

	product, err := h.service.UpdateProduct(c.Params("id"), input, uploadedImage(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDeleteProduct removes a product. Deleting an unknown id still
// responds with success.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
