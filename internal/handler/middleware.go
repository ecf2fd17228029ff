package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireSchedulerSecret rejects requests whose X-Scheduler-Secret header
// does not match secret. An unset secret rejects everything.
func RequireSchedulerSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(SchedulerSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			logrus.WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"configured": secret != "",
				"client_ip":  c.ClientIP(),
			}).Warn("Rejected request with invalid scheduler secret")
			abortWithError(c, http.StatusForbidden, "forbidden", "Invalid scheduler secret")
			return
		}
		c.Next()
	}
}
