package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the context.
const userIDKey = contextKey("userID")

// deviceIDKey is the key used to store the authenticated device's ID in the context.
const deviceIDKey = contextKey("deviceID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if ctxVal := c.Request.Context().Value(userIDKey); ctxVal != nil {
			if userID, ok := ctxVal.(string); ok {
				return userID, true
			}
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}

// GetDeviceIDFromContext retrieves the authenticated device ID from the Gin context.
func GetDeviceIDFromContext(c *gin.Context) (string, bool) {
	deviceIDVal, exists := c.Get(string(deviceIDKey))
	if !exists {
		if ctxVal := c.Request.Context().Value(deviceIDKey); ctxVal != nil {
			if deviceID, ok := ctxVal.(string); ok {
				return deviceID, true
			}
		}
		return "", false
	}

	deviceID, ok := deviceIDVal.(string)
	if !ok {
		return "", false
	}

	return deviceID, true
}
