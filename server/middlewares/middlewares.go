package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/clients"
)

var identityClient *clients.IdentityClient

// Setup initializes all package scoped variables that are needed to perform
// middleware functionalities. This function must be called before any
// middleware is used.
func Setup() {
	identityClient = clients.NewIdentityClient()
}

// SetIdentityClient swaps the identity client, for tests.
func SetIdentityClient(client *clients.IdentityClient) {
	identityClient = client
}

// Session validates the bearer token in the Authorization header against the
// identity provider and stamps the resolved user id into the "sub" header.
// Every handler downstream reads ownership from that header only.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing session token",
			})
			c.Abort()
			return
		}

		sub, err := identityClient.ResolveUser(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid session",
			})
			c.Abort()
			return
		}

		// Successfully validated the session, replace any caller supplied "sub"
		// with the verified one.
		c.Request.Header.Del("sub")
		c.Request.Header.Add("sub", sub)

		c.Next()
	}
}
