package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cafedesk/handlers"
	"cafedesk/utils"
)

// RegisterVoiceRoutes registers the telephony webhook endpoints.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	voice := r.Group("/voice")
	{
		// Twilio may be configured with either method for the entry webhook.
		voice.GET("", hb.Voice.VoiceEntry)
		voice.POST("", hb.Voice.VoiceEntry)
		voice.POST("/turn", hb.Voice.Turn)
	}
}

// RegisterMediaRoute registers the realtime media-stream websocket endpoint.
// The endpoint is only exposed when the realtime pipeline was assembled.
func RegisterMediaRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Media == nil {
		return
	}
	r.GET("/media", hb.Media.Stream)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	RegisterVoiceRoutes(r, hb)
	RegisterMediaRoute(r, hb)
	RegisterHealthRoute(r)

	// Synthesized reply audio fetched by the telephony provider.
	r.Static("/audio", hb.AudioDir)
}
