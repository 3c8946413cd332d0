package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-marketplace-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handler.HealthCheck)

		// Artworks (public reads, authenticated writes)
		v1.POST("/artworks", auth, handler.MintArtwork)
		v1.GET("/artworks/supply", handler.GetTotalSupply)
		v1.GET("/artworks/:id", handler.GetArtwork)
		v1.GET("/artworks/:id/owner", handler.GetOwner)
		v1.GET("/artworks/:id/uri", handler.GetTokenURI)
		v1.GET("/artworks/:id/history", handler.GetHistory)
		v1.GET("/artworks/:id/history/stats", handler.GetHistoryStats)

		// Listings
		v1.POST("/artworks/:id/listing", auth, handler.ListForSale)
		v1.PATCH("/artworks/:id/listing", auth, handler.UpdatePrice)
		v1.DELETE("/artworks/:id/listing", auth, handler.UnlistFromSale)
		v1.POST("/artworks/:id/purchase", auth, handler.BuyArtwork)

		// Auctions
		v1.GET("/artworks/:id/auction", handler.GetAuction)
		v1.POST("/artworks/:id/auction", auth, handler.CreateAuction)
		v1.DELETE("/artworks/:id/auction", auth, handler.CancelAuction)
		v1.POST("/artworks/:id/auction/bids", auth, handler.PlaceBid)
		v1.POST("/artworks/:id/auction/end", auth, handler.EndAuction)

		// Royalties and platform
		v1.GET("/creators/:address/royalties", handler.GetCreatorRoyalties)
		v1.GET("/platform", handler.GetPlatform)
		v1.POST("/platform/withdraw", auth, handler.WithdrawPlatformFees)
		v1.PUT("/platform/fee", auth, handler.UpdatePlatformFee)

		// Pull payments
		v1.GET("/payouts", auth, handler.ListPayouts)
		v1.POST("/payouts/withdraw", auth, handler.WithdrawPayouts)

		// Notifications
		v1.GET("/events", handler.ListEvents)
		v1.GET("/events/stream", handler.StreamEvents)
	}
}
