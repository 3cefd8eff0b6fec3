package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/balaguruva/admin-backend/internal/services"
)

type ProductTestSuite struct {
	apiSuite
}

type productBody struct {
	UUID            uuid.UUID `json:"_id"`
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Mrp             float64   `json:"mrp"`
	DiscountedPrice float64   `json:"discountedPrice"`
	Category        string    `json:"category"`
	Stock           int       `json:"stock"`
	Image           string    `json:"image"`
}

func (suite *ProductTestSuite) create(fields map[string]string) productBody {
	w, body := suite.doForm(http.MethodPost, "/api/products", fields, pngBytes, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var p productBody
	suite.decode(body.Data, &p)
	return p
}

func (suite *ProductTestSuite) TestCreateProduct() {
	p := suite.create(productFields())

	assert.Equal(suite.T(), int64(1), p.ID)
	assert.Equal(suite.T(), "Darjeeling", p.Name)
	assert.Equal(suite.T(), 180.0, p.DiscountedPrice)
	assert.True(suite.T(), strings.HasPrefix(p.Image, "data:image/png;base64,"))

	second := suite.create(productFields())
	assert.Equal(suite.T(), int64(2), second.ID)
}

func (suite *ProductTestSuite) TestCreateProductAcceptsPriceAlias() {
	fields := productFields()
	delete(fields, "mrp")
	fields["price"] = "300"

	p := suite.create(fields)
	assert.Equal(suite.T(), 300.0, p.Mrp)
	assert.Equal(suite.T(), 270.0, p.DiscountedPrice)
}

func (suite *ProductTestSuite) TestCreateProductRejectsBadInput() {
	fields := productFields()
	delete(fields, "category")
	w, body := suite.doForm(http.MethodPost, "/api/products", fields, pngBytes, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "All fields are required", body.Error)

	w, body = suite.doForm(http.MethodPost, "/api/products", productFields(), nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Image is required", body.Error)

	fields = productFields()
	fields["colour"] = "green"
	w, body = suite.doForm(http.MethodPost, "/api/products", fields, pngBytes, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", body.Code)

	fields = productFields()
	fields["stock"] = "lots"
	w, _ = suite.doForm(http.MethodPost, "/api/products", fields, pngBytes, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, body = suite.doForm(http.MethodPost, "/api/products", productFields(), []byte("plain text, not a picture"), "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_FILE_TYPE", body.Code)

	big := append([]byte{}, pngBytes...)
	big = append(big, make([]byte, 2<<10)...)
	w, body = suite.doForm(http.MethodPost, "/api/products", productFields(), big, "")
	assert.Equal(suite.T(), http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(suite.T(), "FILE_TOO_LARGE", body.Code)

	// None of the rejected requests used up a number.
	assert.Equal(suite.T(), int64(1), suite.create(productFields()).ID)
}

func (suite *ProductTestSuite) TestGetProduct() {
	p := suite.create(productFields())

	w, body := suite.doJSON(http.MethodGet, "/api/products/"+p.UUID.String(), nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var got productBody
	suite.decode(body.Data, &got)
	assert.Equal(suite.T(), p.ID, got.ID)

	w, body = suite.doJSON(http.MethodGet, "/api/products/12345", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Invalid product ID", body.Error)

	w, body = suite.doJSON(http.MethodGet, "/api/products/"+uuid.NewString(), nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "Product not found", body.Error)
}

func (suite *ProductTestSuite) TestListProductsFiltersAndPaginates() {
	suite.create(productFields())
	coffee := productFields()
	coffee["name"] = "Arabica"
	coffee["category"] = "Coffee"
	suite.create(coffee)
	suite.create(productFields())

	w, body := suite.doJSON(http.MethodGet, "/api/products", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var all []productBody
	suite.decode(body.Data, &all)
	assert.Len(suite.T(), all, 3)

	w, body = suite.doJSON(http.MethodGet, "/api/products?category=Coffee", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var coffees []productBody
	suite.decode(body.Data, &coffees)
	assert.Len(suite.T(), coffees, 1)
	assert.Equal(suite.T(), "Arabica", coffees[0].Name)

	w, body = suite.doJSON(http.MethodGet, "/api/products?page=2&limit=2", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "3", w.Header().Get("X-Total-Count"))
	var page []productBody
	suite.decode(body.Data, &page)
	assert.Len(suite.T(), page, 1)
	assert.Equal(suite.T(), int64(3), page[0].ID)
}

func (suite *ProductTestSuite) TestUpdateProduct() {
	p := suite.create(productFields())

	w, body := suite.doForm(http.MethodPut, "/api/products/"+p.UUID.String(), map[string]string{"discount": "25", "stock": "0"}, nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "Product updated", body.Message)

	var updated productBody
	suite.decode(body.Data, &updated)
	assert.Equal(suite.T(), p.ID, updated.ID)
	assert.Equal(suite.T(), 150.0, updated.DiscountedPrice)
	assert.Equal(suite.T(), 0, updated.Stock)
	assert.Equal(suite.T(), p.Image, updated.Image)

	w, _ = suite.doForm(http.MethodPut, "/api/products/"+p.UUID.String(), map[string]string{"discount": "150"}, nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, _ = suite.doForm(http.MethodPut, "/api/products/"+uuid.NewString(), map[string]string{"stock": "1"}, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProductTestSuite) TestDeleteProductArchivesIt() {
	p := suite.create(productFields())

	w, body := suite.doJSON(http.MethodDelete, "/api/products/"+p.UUID.String(), nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var deleted struct {
		DeletedID uuid.UUID `json:"deletedId"`
	}
	suite.decode(body.Data, &deleted)
	assert.Equal(suite.T(), p.UUID, deleted.DeletedID)

	w, _ = suite.doJSON(http.MethodGet, "/api/products/"+p.UUID.String(), nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, body = suite.doJSON(http.MethodGet, "/api/deleted-products", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var archived []struct {
		ProductID string `json:"productId"`
		ID        int64  `json:"id"`
		Image     string `json:"image"`
	}
	suite.decode(body.Data, &archived)
	suite.Require().Len(archived, 1)
	assert.Equal(suite.T(), p.UUID.String(), archived[0].ProductID)
	assert.Equal(suite.T(), p.Image, archived[0].Image)

	// Numbers are never reused after a delete.
	assert.Equal(suite.T(), int64(2), suite.create(productFields()).ID)

	w, _ = suite.doJSON(http.MethodDelete, "/api/products/"+p.UUID.String(), nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProductTestSuite) TestExportProducts() {
	suite.create(productFields())

	w, _ := suite.doJSON(http.MethodGet, "/api/exports/products", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), services.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(suite.T(), w.Header().Get("Content-Disposition"), "products.xlsx")
	assert.NotZero(suite.T(), w.Body.Len())
}

func TestProductTestSuite(t *testing.T) {
	suite.Run(t, new(ProductTestSuite))
}
