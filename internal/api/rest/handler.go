package rest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/api/middleware"
	"github.com/feral-file/ff-marketplace-ledger/internal/api/rest/dto"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/marketplace"
	"github.com/feral-file/ff-marketplace-ledger/internal/uri"
)

const (
	MAX_EVENTS_PAGE_SIZE = 500
	healthCheckTimeout   = 2 * time.Second
)

// Handler defines the REST API handlers
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// MintArtwork mints a token for the caller, with a custom royalty when royalty_bps is set
	// POST /api/v1/artworks
	MintArtwork(c *gin.Context)

	// GetTotalSupply returns the number of minted tokens
	// GET /api/v1/artworks/supply
	GetTotalSupply(c *gin.Context)

	// GetArtwork returns an artwork
	// GET /api/v1/artworks/:id?with_royalty=true
	GetArtwork(c *gin.Context)

	// GetOwner returns the current owner of a token
	// GET /api/v1/artworks/:id/owner
	GetOwner(c *gin.Context)

	// GetTokenURI returns the token URI, resolved to a gateway URL with resolve=true
	// GET /api/v1/artworks/:id/uri?resolve=true
	GetTokenURI(c *gin.Context)

	// ListForSale lists the caller's token for direct sale
	// POST /api/v1/artworks/:id/listing
	ListForSale(c *gin.Context)

	// UpdatePrice changes the price of the caller's listing
	// PATCH /api/v1/artworks/:id/listing
	UpdatePrice(c *gin.Context)

	// UnlistFromSale withdraws the caller's listing
	// DELETE /api/v1/artworks/:id/listing
	UnlistFromSale(c *gin.Context)

	// BuyArtwork buys a listed token for the caller
	// POST /api/v1/artworks/:id/purchase
	BuyArtwork(c *gin.Context)

	// CreateAuction starts an auction on the caller's token
	// POST /api/v1/artworks/:id/auction
	CreateAuction(c *gin.Context)

	// GetAuction returns the auction of a token
	// GET /api/v1/artworks/:id/auction
	GetAuction(c *gin.Context)

	// PlaceBid bids on an active auction
	// POST /api/v1/artworks/:id/auction/bids
	PlaceBid(c *gin.Context)

	// EndAuction finalizes an expired auction
	// POST /api/v1/artworks/:id/auction/end
	EndAuction(c *gin.Context)

	// CancelAuction cancels an auction without bids
	// DELETE /api/v1/artworks/:id/auction
	CancelAuction(c *gin.Context)

	// GetHistory returns the custody log, newest first
	// GET /api/v1/artworks/:id/history?with_type=true&compact=true
	GetHistory(c *gin.Context)

	// GetHistoryStats aggregates the raw custody log
	// GET /api/v1/artworks/:id/history/stats
	GetHistoryStats(c *gin.Context)

	// GetCreatorRoyalties returns the royalty balance of a creator
	// GET /api/v1/creators/:address/royalties
	GetCreatorRoyalties(c *gin.Context)

	// GetPlatform returns the platform fee settings and treasury
	// GET /api/v1/platform
	GetPlatform(c *gin.Context)

	// WithdrawPlatformFees queues the accrued fees for the treasury
	// POST /api/v1/platform/withdraw
	WithdrawPlatformFees(c *gin.Context)

	// UpdatePlatformFee changes the platform fee rate
	// PUT /api/v1/platform/fee
	UpdatePlatformFee(c *gin.Context)

	// ListPayouts returns the withdrawable payouts and balance of the caller
	// GET /api/v1/payouts
	ListPayouts(c *gin.Context)

	// WithdrawPayouts re-queues the withdrawable payouts of the caller
	// POST /api/v1/payouts/withdraw
	WithdrawPayouts(c *gin.Context)

	// ListEvents returns the event journal in id order
	// GET /api/v1/events?token_id=<id>&type=<type>&after=<id>&limit=<limit>
	ListEvents(c *gin.Context)

	// StreamEvents streams live events as server-sent events
	// GET /api/v1/events/stream
	StreamEvents(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	marketplace marketplace.Marketplace
	payouts     PayoutService
	journal     EventJournal
	stream      EventStream
	resolver    uri.Resolver
	health      HealthChecker
}

// NewHandler creates a new REST API handler
func NewHandler(
	mp marketplace.Marketplace,
	payouts PayoutService,
	journal EventJournal,
	stream EventStream,
	resolver uri.Resolver,
	health HealthChecker,
) Handler {
	return &handler{
		marketplace: mp,
		payouts:     payouts,
		journal:     journal,
		stream:      stream,
		resolver:    resolver,
		health:      health,
	}
}

func (h *handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			logger.WarnCtx(ctx, "Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"service": "ff-marketplace-api",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-marketplace-api",
	})
}

func (h *handler) MintArtwork(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.MintArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	price := new(big.Int)
	if req.Price != "" {
		var err error
		if price, err = domain.ParseAmount(req.Price); err != nil {
			respondError(c, err, "Failed to mint artwork")
			return
		}
	}

	var artwork *domain.Artwork
	var err error
	if req.RoyaltyBps != nil {
		artwork, err = h.marketplace.MintArtworkWithRoyalty(c.Request.Context(), caller, req.TokenURI, req.CreatorName, price, *req.RoyaltyBps)
	} else {
		artwork, err = h.marketplace.MintArtwork(c.Request.Context(), caller, req.TokenURI, req.CreatorName, price)
	}
	if err != nil {
		respondError(c, err, "Failed to mint artwork")
		return
	}

	c.JSON(http.StatusCreated, dto.NewArtworkResponse(artwork))
}

func (h *handler) GetTotalSupply(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SupplyResponse{TotalSupply: h.marketplace.GetTotalSupply()})
}

func (h *handler) GetArtwork(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	if c.Query("with_royalty") == "true" {
		info, err := h.marketplace.GetArtworkInfoWithRoyalty(tokenID)
		if err != nil {
			respondError(c, err, "Failed to get artwork")
			return
		}
		c.JSON(http.StatusOK, dto.NewArtworkRoyaltyInfoResponse(info))
		return
	}

	info, err := h.marketplace.GetArtworkInfo(tokenID)
	if err != nil {
		respondError(c, err, "Failed to get artwork")
		return
	}
	c.JSON(http.StatusOK, dto.NewArtworkInfoResponse(info))
}

func (h *handler) GetOwner(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	owner, err := h.marketplace.OwnerOf(tokenID)
	if err != nil {
		respondError(c, err, "Failed to get owner")
		return
	}
	c.JSON(http.StatusOK, dto.OwnerResponse{TokenID: tokenID, Owner: owner})
}

func (h *handler) GetTokenURI(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	tokenURI, err := h.marketplace.TokenURI(tokenID)
	if err != nil {
		respondError(c, err, "Failed to get token URI")
		return
	}

	resp := dto.TokenURIResponse{TokenID: tokenID, TokenURI: tokenURI}
	if c.Query("resolve") == "true" && h.resolver != nil {
		resolved, err := h.resolver.Resolve(c.Request.Context(), tokenURI)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Failed to resolve token URI",
				zap.Uint64("token_id", tokenID),
				zap.String("token_uri", tokenURI),
				zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"code":    "uri_unresolvable",
				"message": err.Error(),
			})
			return
		}
		resp.ResolvedURL = resolved
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) ListForSale(c *gin.Context) {
	h.changeListing(c, h.marketplace.ListForSale, "Failed to list artwork")
}

func (h *handler) UpdatePrice(c *gin.Context) {
	h.changeListing(c, h.marketplace.UpdatePrice, "Failed to update price")
}

// changeListing runs a listing operation that takes a price
func (h *handler) changeListing(
	c *gin.Context,
	op func(ctx context.Context, caller string, tokenID uint64, price *big.Int) (*domain.Artwork, error),
	failure string,
) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	var req dto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		respondError(c, err, failure)
		return
	}

	artwork, err := op(c.Request.Context(), caller, tokenID, price)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, dto.NewArtworkResponse(artwork))
}

func (h *handler) UnlistFromSale(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	artwork, err := h.marketplace.UnlistFromSale(c.Request.Context(), caller, tokenID)
	if err != nil {
		respondError(c, err, "Failed to unlist artwork")
		return
	}
	c.JSON(http.StatusOK, dto.NewArtworkResponse(artwork))
}

func (h *handler) BuyArtwork(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	paid, err := domain.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err, "Failed to buy artwork")
		return
	}

	settlement, err := h.marketplace.BuyArtwork(c.Request.Context(), caller, tokenID, paid)
	if err != nil {
		respondError(c, err, "Failed to buy artwork")
		return
	}
	c.JSON(http.StatusOK, dto.NewSettlementResponse(settlement))
}

func (h *handler) CreateAuction(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	var req dto.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	startPrice, err := domain.ParseAmount(req.StartPrice)
	if err != nil {
		respondError(c, err, "Failed to create auction")
		return
	}

	auction, err := h.marketplace.CreateAuction(c.Request.Context(), caller, tokenID, startPrice, req.DurationHours)
	if err != nil {
		respondError(c, err, "Failed to create auction")
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuctionResponse(auction))
}

func (h *handler) GetAuction(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	info, err := h.marketplace.GetAuctionInfo(tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveAuction) {
			respondNotFound(c, "Auction not found", err.Error())
			return
		}
		respondError(c, err, "Failed to get auction")
		return
	}
	c.JSON(http.StatusOK, dto.NewAuctionInfoResponse(info))
}

func (h *handler) PlaceBid(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	var req dto.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err, "Failed to place bid")
		return
	}

	auction, err := h.marketplace.PlaceBid(c.Request.Context(), caller, tokenID, amount)
	if err != nil {
		respondError(c, err, "Failed to place bid")
		return
	}
	c.JSON(http.StatusOK, dto.NewAuctionResponse(auction))
}

func (h *handler) EndAuction(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	result, err := h.marketplace.EndAuction(c.Request.Context(), caller, tokenID)
	if err != nil {
		respondError(c, err, "Failed to end auction")
		return
	}
	c.JSON(http.StatusOK, dto.NewAuctionResultResponse(result))
}

func (h *handler) CancelAuction(c *gin.Context) {
	caller, tokenID, ok := callerAndToken(c)
	if !ok {
		return
	}

	auction, err := h.marketplace.CancelAuction(c.Request.Context(), caller, tokenID)
	if err != nil {
		respondError(c, err, "Failed to cancel auction")
		return
	}
	c.JSON(http.StatusOK, dto.NewAuctionResponse(auction))
}

func (h *handler) GetHistory(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var records []domain.OwnershipRecord
	var err error
	switch {
	case query.Compact:
		records, err = h.marketplace.GetCompactedOwnershipHistory(tokenID)
	case query.WithType:
		records, _, err = h.marketplace.GetOwnershipHistoryWithType(tokenID)
	default:
		records, err = h.marketplace.GetOwnershipHistory(tokenID)
	}
	if err != nil {
		respondError(c, err, "Failed to get ownership history")
		return
	}

	resp := dto.HistoryResponse{
		TokenID: tokenID,
		Records: make([]dto.OwnershipRecordResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, dto.NewOwnershipRecordResponse(r, query.WithType))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetHistoryStats(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	stats, err := h.marketplace.GetOwnershipStats(tokenID)
	if err != nil {
		respondError(c, err, "Failed to get ownership stats")
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryStatsResponse(tokenID, stats))
}

func (h *handler) GetCreatorRoyalties(c *gin.Context) {
	creator, err := domain.NormalizeAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid creator address", err.Error())
		return
	}

	balance, err := h.marketplace.GetCreatorRoyalties(creator)
	if err != nil {
		respondError(c, err, "Failed to get creator royalties")
		return
	}
	c.JSON(http.StatusOK, dto.RoyaltiesResponse{
		Creator: creator,
		Balance: domain.AmountString(balance),
	})
}

func (h *handler) GetPlatform(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewPlatformResponse(h.marketplace.GetPlatformInfo()))
}

func (h *handler) WithdrawPlatformFees(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	p, err := h.marketplace.WithdrawPlatformFees(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to withdraw platform fees")
		return
	}
	c.JSON(http.StatusAccepted, dto.NewPayoutResponse(*p))
}

func (h *handler) UpdatePlatformFee(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.UpdatePlatformFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	state, err := h.marketplace.UpdatePlatformFee(c.Request.Context(), caller, *req.PlatformFeeBps)
	if err != nil {
		respondError(c, err, "Failed to update platform fee")
		return
	}
	c.JSON(http.StatusOK, dto.NewPlatformResponse(*state))
}

func (h *handler) ListPayouts(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	payouts, err := h.payouts.ListWithdrawable(c.Request.Context(), caller)
	if err != nil {
		respondInternalError(c, err, "Failed to list payouts", zap.String("recipient", caller))
		return
	}
	balance, err := h.payouts.Balance(c.Request.Context(), caller)
	if err != nil {
		respondInternalError(c, err, "Failed to get payout balance", zap.String("recipient", caller))
		return
	}
	c.JSON(http.StatusOK, dto.NewPayoutsResponse(caller, balance, payouts))
}

func (h *handler) WithdrawPayouts(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	payouts, err := h.payouts.Withdraw(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to withdraw payouts")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"payouts": dto.NewPayoutResponses(payouts)})
}

func (h *handler) ListEvents(c *gin.Context) {
	var query dto.EventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if query.Limit <= 0 || query.Limit > MAX_EVENTS_PAGE_SIZE {
		respondValidationError(c, fmt.Sprintf("limit must be between 1 and %d", MAX_EVENTS_PAGE_SIZE))
		return
	}

	events, err := h.journal.ListEvents(c.Request.Context(), domain.EventFilter{
		TokenID: query.TokenID,
		Type:    domain.EventType(query.Type),
		After:   query.After,
		Limit:   query.Limit,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list events")
		return
	}

	resp := dto.EventsResponse{Events: events}
	if len(events) == query.Limit {
		resp.NextCursor = events[len(events)-1].ID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events := h.stream.Subscribe(ctx)

	// Streams outlive the server write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(e.Type), e)
			c.Writer.Flush()
		}
	}
}

// parseTokenID reads the :id path parameter, responding 400 when it is not a token id
func parseTokenID(c *gin.Context) (uint64, bool) {
	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tokenID == 0 {
		respondBadRequest(c, "Invalid token ID", c.Param("id"))
		return 0, false
	}
	return tokenID, true
}

// requireCaller returns the authenticated caller, responding 401 when there is none
func requireCaller(c *gin.Context) (string, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		respondUnauthorized(c, "Caller is not authenticated")
		return "", false
	}
	return caller, true
}

func callerAndToken(c *gin.Context) (string, uint64, bool) {
	caller, ok := requireCaller(c)
	if !ok {
		return "", 0, false
	}
	tokenID, ok := parseTokenID(c)
	if !ok {
		return "", 0, false
	}
	return caller, tokenID, true
}
