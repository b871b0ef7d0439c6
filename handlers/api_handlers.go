package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall-users/db"
	"rollcall-users/models"
	"rollcall-users/sheet"
	"rollcall-users/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UserStore is the storage behind the users collection.
type UserStore interface {
	AddUser(ctx context.Context, d models.Draft) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, d models.Draft) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ImportUsersFromExcel(ctx context.Context, file io.Reader) (int, error)
}

var _ UserStore = (*db.RedisService)(nil)

// APIHandler holds the dependencies for API handlers, like the user store
type APIHandler struct {
	Store UserStore
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store UserStore) *APIHandler {
	return &APIHandler{
		Store: store,
	}
}

// bindDraft decodes and validates a user draft from the request body. It
// writes the error response itself and reports whether the handler
// should continue.
func bindDraft(c *gin.Context) (models.Draft, bool) {
	var draft models.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return models.Draft{}, false
	}
	if err := validation.Validate(draft); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return models.Draft{}, false
	}
	return draft, true
}

// --- User Handlers ---

// GetAllUsers handles GET /users
func (h *APIHandler) GetAllUsers(c *gin.Context) {
	users, err := h.Store.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Printf("Error in GetAllUsers handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	if users == nil {
		// Return empty list instead of null for JSON consistency
		c.JSON(http.StatusOK, []models.User{})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserByID handles GET /users/:id
func (h *APIHandler) GetUserByID(c *gin.Context) {
	id := c.Param("id")

	user, err := h.Store.GetUserByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error in GetUserByID handler for ID %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// AddUser handles POST /users
func (h *APIHandler) AddUser(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	user, err := h.Store.AddUser(c.Request.Context(), draft)
	if err != nil {
		log.Printf("Error in AddUser handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /users/:id
func (h *APIHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	user, err := h.Store.UpdateUser(c.Request.Context(), id, draft)
	if errors.Is(err, db.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error in UpdateUser handler for ID %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id and answers with the removed record.
func (h *APIHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	user, err := h.Store.GetUserByID(ctx, id)
	if err == nil {
		err = h.Store.DeleteUser(ctx, id)
	}
	if errors.Is(err, db.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error in DeleteUser handler for ID %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- Import / Export Handlers ---

// ImportUsers handles POST /users/import
func (h *APIHandler) ImportUsers(c *gin.Context) {
	file, header, err := c.Request.FormFile("file") // "file" is the name attribute in the form
	if err != nil {
		log.Printf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	log.Printf("Received file upload: %s", header.Filename)

	importedCount, err := h.Store.ImportUsersFromExcel(c.Request.Context(), file)
	if err != nil {
		log.Printf("Error importing users from file %s: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to import users: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": importedCount,
	})
}

// ExportUsers handles GET /users/export
func (h *APIHandler) ExportUsers(c *gin.Context) {
	users, err := h.Store.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Printf("Error in ExportUsers handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteUsers(&buf, users); err != nil {
		log.Printf("Error writing export workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="users.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
