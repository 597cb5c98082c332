package middleware

import "github.com/gin-gonic/gin"

// Chain returns mws followed by h in a fresh slice.
func Chain(mws []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mws)+1)
	out = append(out, mws...)
	return append(out, h)
}
