package server

import (
	"crypto-observer/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// abortWithAggregationError maps the aggregation error taxonomy onto HTTP
// statuses: unknown asset is a 404, a resolved asset that no provider could
// serve is a 502, anything else a 500.
func abortWithAggregationError(c *gin.Context, err error) {
	switch {
	case helpers.IsNotFound(err):
		c.JSON(404, gin.H{"error": err.Error()})
	case helpers.IsAggregationFailed(err):
		c.JSON(502, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": err.Error()})
	}
}
