// internal/handlers/product.go
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

var productFormFields = []string{
	"name", "description", "mrp", "price", "discount", "discountedPrice", "category", "stock", "image",
}

// productForm is the multipart body of product create and update. price is
// accepted as an alias of mrp.
type productForm struct {
	Name            *string  `form:"name"`
	Description     *string  `form:"description"`
	Mrp             *float64 `form:"mrp"`
	Price           *float64 `form:"price"`
	Discount        *float64 `form:"discount"`
	DiscountedPrice *float64 `form:"discountedPrice"`
	Category        *string  `form:"category"`
	Stock           *int     `form:"stock"`
}

type ProductHandler struct {
	productService *services.ProductService
	exportService  *services.ExportService
	maxImageBytes  int64
}

func NewProductHandler(productService *services.ProductService, exportService *services.ExportService, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		exportService:  exportService,
		maxImageBytes:  maxImageBytes,
	}
}

// GET /api/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	filter := repository.ProductFilter{}
	if category := c.Query("category"); category != "" {
		for _, name := range strings.Split(category, ",") {
			if name = strings.TrimSpace(name); name != "" {
				filter.Categories = append(filter.Categories, name)
			}
		}
	}

	params, paged := utils.GetPaginationParams(c)
	if paged {
		filter.Offset = params.Offset()
		filter.Limit = params.Limit
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	if paged {
		utils.PaginatedResponse(c, services.NewProductResponses(products), utils.CreatePaginationResult(total, params))
		return
	}
	utils.SuccessResponse(c, services.NewProductResponses(products))
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, i18n.KeyProductInvalidID)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, services.NewProductResponse(product))
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	req, ok := h.bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondProductError(c, err)
		return
	}

	utils.CreatedResponse(c, services.NewProductResponse(product))
}

// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, i18n.KeyProductInvalidID)
	if !ok {
		return
	}

	req, ok := h.bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.respondProductError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyProductUpdated, services.NewProductResponse(product))
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, i18n.KeyProductInvalidID)
	if !ok {
		return
	}

	deletedID, err := h.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyProductDeleted, gin.H{"deletedId": deletedID})
}

// GET /api/deleted-products
func (h *ProductHandler) GetDeletedProducts(c *gin.Context) {
	archived, err := h.productService.ListArchived(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, services.NewDeletedProductResponses(archived))
}

// GET /api/exports/products
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.WriteProductsWorkbook(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	// Set response headers for download
	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Data(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// bindProductForm parses the multipart body into a ProductInput, rejecting
// unknown fields, malformed numbers and unacceptable images.
func (h *ProductHandler) bindProductForm(c *gin.Context) (*services.ProductInput, bool) {
	lang := utils.GetLangFromContext(c)

	// Leave room for the text fields next to the image.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+1<<20)

	multipartForm, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.T(lang, i18n.KeyFileTooLarge, h.maxImageBytes), nil)
			return nil, false
		}
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "multipart form"), err.Error())
		return nil, false
	}
	if unknown := utils.CheckFormFields(multipartForm, productFormFields...); len(unknown) > 0 {
		utils.ValidationErrorResponse(c, unknown)
		return nil, false
	}

	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return nil, false
	}

	req := &services.ProductInput{
		Name:            form.Name,
		Description:     form.Description,
		Mrp:             form.Mrp,
		Discount:        form.Discount,
		DiscountedPrice: form.DiscountedPrice,
		Category:        form.Category,
		Stock:           form.Stock,
	}
	if req.Mrp == nil {
		req.Mrp = form.Price
	}

	if files := multipartForm.File["image"]; len(files) > 0 {
		image, err := utils.ReadImage(files[0], h.maxImageBytes)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrImageTooLarge):
				utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.T(lang, i18n.KeyFileTooLarge, h.maxImageBytes), nil)
			case errors.Is(err, utils.ErrImageUnsupported):
				utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_FILE_TYPE", i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
			default:
				utils.BadRequestResponse(c, "", err.Error())
			}
			return nil, false
		}
		req.Image = image
	}

	return req, true
}

// respondProductError reports missing required fields with one message.
func (h *ProductHandler) respondProductError(c *gin.Context, err error) {
	if utils.IsValidationError(err) {
		validationErrors := utils.GetValidationErrors(err)
		lang := utils.GetLangFromContext(c)
		message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
		for _, ve := range validationErrors {
			if ve.Tag == "required" {
				message = i18n.T(lang, i18n.KeyProductFieldsAbsent)
				break
			}
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, validationErrors)
		return
	}
	respondError(c, err)
}
