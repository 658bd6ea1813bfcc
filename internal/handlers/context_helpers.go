package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// currentUser pulls the authenticated user's ID and role out of the gin
// context. The auth middleware sets both; a miss means the route was wired
// without it.
func currentUser(c *gin.Context) (int64, string, bool) {
	userIDRaw, exists := c.Get("userID")
	if !exists {
		utils.LogError(errors.New("userID not found in context"), "currentUser: userID not in context")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return 0, "", false
	}
	userID, ok := userIDRaw.(int64)
	if !ok {
		utils.LogError(errors.New("userID is not of type int64"), "currentUser: userID type assertion failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User ID format incorrect.", "Invalid user ID format in context"))
		return 0, "", false
	}
	role := c.GetString("userRole")
	return userID, role, true
}

// pathID parses the named path parameter as a positive int64.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" path parameter.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// pagination reads page/page_size query parameters with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// paginatedResponse is the common list envelope.
func paginatedResponse(c *gin.Context, data interface{}, totalCount, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"total_count": totalCount,
		"page":        page,
		"page_size":   pageSize,
	})
}
