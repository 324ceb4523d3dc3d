// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetUserID gets the authenticated user id from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the user id from context or panics. Only for handlers
// behind Auth(); the recovery middleware turns the panic into a 500.
func MustGetUserID(c *gin.Context) int64 {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}

// MustGetJTI gets the token id from context or panics.
func MustGetJTI(c *gin.Context) string {
	v, exists := c.Get("jti")
	if !exists {
		panic("jti not found in context")
	}
	jti, ok := v.(string)
	if !ok {
		panic("jti has unexpected type")
	}
	return jti
}

// IsAdmin checks if the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	return exists && role == "admin"
}
