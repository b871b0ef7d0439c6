package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the users collection under router.
func RegisterRoutes(router gin.IRouter, h *APIHandler) {
	users := router.Group("/users")
	{
		users.GET("", h.GetAllUsers)
		users.POST("", h.AddUser)

		// Static segments take precedence over :id
		users.GET("/export", h.ExportUsers)
		users.POST("/import", h.ImportUsers)

		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	router.GET("/ping", PingHandler)
}
