// internal/handlers/contact.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// GET /api/contacts
func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.contactService.ListContacts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, contacts)
}

// POST /api/contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req services.CreateContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, contact)
}
