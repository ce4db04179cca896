package httpapi

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func respond(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// bindJSON binds the request body. The body is cached so it can be read after
// the guard has inspected it.
func bindJSON(c *gin.Context, dst any) error {
	return c.ShouldBindBodyWith(dst, binding.JSON)
}

// bindOptionalJSON is bindJSON with an empty body treated as an empty object.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := bindJSON(c, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
