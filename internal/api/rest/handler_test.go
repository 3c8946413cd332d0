package rest_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/api/middleware"
	"github.com/feral-file/ff-marketplace-ledger/internal/api/rest"
	"github.com/feral-file/ff-marketplace-ledger/internal/api/rest/dto"
	apierrors "github.com/feral-file/ff-marketplace-ledger/internal/api/shared/errors"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/marketplace"
	"github.com/feral-file/ff-marketplace-ledger/internal/messaging"
	"github.com/feral-file/ff-marketplace-ledger/internal/mocks"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

const (
	apiKey    = "backend-key"
	creator   = "0x1000000000000000000000000000000000000001"
	collector = "0x2000000000000000000000000000000000000002"
	testURI   = "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

var createdAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

// testHandlerMocks contains all the mocks needed for testing the handler
type testHandlerMocks struct {
	ctrl        *gomock.Controller
	marketplace *mocks.MockMarketplace
	payouts     *mocks.MockPayoutService
	journal     *mocks.MockEventJournal
	resolver    *mocks.MockURIResolver
	health      *mocks.MockHealthChecker
	broker      *messaging.Broker
	router      *gin.Engine
}

func setupTestHandler(t *testing.T) *testHandlerMocks {
	ctrl := gomock.NewController(t)
	tm := &testHandlerMocks{
		ctrl:        ctrl,
		marketplace: mocks.NewMockMarketplace(ctrl),
		payouts:     mocks.NewMockPayoutService(ctrl),
		journal:     mocks.NewMockEventJournal(ctrl),
		resolver:    mocks.NewMockURIResolver(ctrl),
		health:      mocks.NewMockHealthChecker(ctrl),
		broker:      messaging.NewBroker(8),
	}

	handler := rest.NewHandler(tm.marketplace, tm.payouts, tm.journal, tm.broker, tm.resolver, tm.health)
	tm.router = gin.New()
	rest.SetupRoutes(tm.router, handler, middleware.AuthConfig{APIKeys: []string{apiKey}})
	return tm
}

// do sends a request, authenticated as caller unless caller is empty
func (tm *testHandlerMocks) do(method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", "ApiKey "+apiKey)
		req.Header.Set(middleware.CALLER_HEADER, caller)
	}
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func testArtwork(owner string, price int64, forSale bool) *domain.Artwork {
	return &domain.Artwork{
		TokenID:         1,
		TokenURI:        testURI,
		OriginalCreator: creator,
		CreatorName:     "Alice",
		RoyaltyBps:      500,
		PlatformFeeBps:  100,
		CurrentOwner:    owner,
		CurrentPrice:    big.NewInt(price),
		IsForSale:       forSale,
		CreatedAt:       createdAt,
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.health.EXPECT().Ping(gomock.Any()).Return(nil)

		w := tm.do(http.MethodGet, "/health", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
	})

	t.Run("database down", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.health.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

		w := tm.do(http.MethodGet, "/api/v1/health", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMintArtwork(t *testing.T) {
	t.Run("default royalty", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().
			MintArtwork(gomock.Any(), creator, testURI, "Alice", big.NewInt(1000)).
			Return(testArtwork(creator, 1000, true), nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks", creator, dto.MintArtworkRequest{
			TokenURI:    testURI,
			CreatorName: "Alice",
			Price:       "1000",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decode[dto.ArtworkResponse](t, w)
		assert.Equal(t, uint64(1), resp.TokenID)
		assert.Equal(t, "1000", resp.CurrentPrice)
		require.NotNil(t, resp.RoyaltyBps)
		assert.Equal(t, uint64(500), *resp.RoyaltyBps)
	})

	t.Run("custom royalty without price", func(t *testing.T) {
		tm := setupTestHandler(t)
		royalty := uint64(250)
		tm.marketplace.EXPECT().
			MintArtworkWithRoyalty(gomock.Any(), creator, testURI, "", big.NewInt(0), royalty).
			Return(testArtwork(creator, 0, false), nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks", creator, dto.MintArtworkRequest{
			TokenURI:   testURI,
			RoyaltyBps: &royalty,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("royalty out of range", func(t *testing.T) {
		tm := setupTestHandler(t)
		royalty := uint64(5000)
		tm.marketplace.EXPECT().
			MintArtworkWithRoyalty(gomock.Any(), creator, testURI, "", gomock.Any(), royalty).
			Return(nil, fmt.Errorf("%w: 5000 > 1000", domain.ErrRoyaltyOutOfRange))

		w := tm.do(http.MethodPost, "/api/v1/artworks", creator, dto.MintArtworkRequest{
			TokenURI:   testURI,
			RoyaltyBps: &royalty,
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apierrors.ErrCodeRoyaltyOutOfRange, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("negative price", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodPost, "/api/v1/artworks", creator, dto.MintArtworkRequest{
			TokenURI: testURI,
			Price:    "-5",
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apierrors.ErrCodeInvalidPrice, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("missing token uri", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodPost, "/api/v1/artworks", creator, map[string]string{"price": "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodPost, "/api/v1/artworks", "", dto.MintArtworkRequest{TokenURI: testURI})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetArtwork(t *testing.T) {
	info := marketplace.ArtworkInfo{
		TokenID:         1,
		OriginalCreator: creator,
		CreatorName:     "Alice",
		CurrentPrice:    big.NewInt(1000),
		CreatedAt:       createdAt,
		IsForSale:       true,
		CurrentOwner:    creator,
	}

	t.Run("without royalty", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetArtworkInfo(uint64(1)).Return(&info, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.ArtworkResponse](t, w)
		assert.Nil(t, resp.RoyaltyBps)
		assert.True(t, resp.IsForSale)
	})

	t.Run("with royalty", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetArtworkInfoWithRoyalty(uint64(1)).
			Return(&marketplace.ArtworkRoyaltyInfo{ArtworkInfo: info, RoyaltyBps: 500}, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1?with_royalty=true", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.ArtworkResponse](t, w)
		require.NotNil(t, resp.RoyaltyBps)
		assert.Equal(t, uint64(500), *resp.RoyaltyBps)
	})

	t.Run("unknown token", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetArtworkInfo(uint64(42)).Return(nil, domain.ErrTokenNotFound)

		w := tm.do(http.MethodGet, "/api/v1/artworks/42", "", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.ErrCodeTokenNotFound, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		tm := setupTestHandler(t)

		for _, id := range []string{"abc", "0", "-1"} {
			w := tm.do(http.MethodGet, "/api/v1/artworks/"+id, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, id)
		}
	})
}

func TestGetTokenURI(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().TokenURI(uint64(1)).Return(testURI, nil)
		tm.resolver.EXPECT().Resolve(gomock.Any(), testURI).
			Return("https://ipfs.io/ipfs/bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/uri?resolve=true", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.TokenURIResponse](t, w)
		assert.Equal(t, testURI, resp.TokenURI)
		assert.True(t, strings.HasPrefix(resp.ResolvedURL, "https://ipfs.io/ipfs/"))
	})

	t.Run("raw", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().TokenURI(uint64(1)).Return(testURI, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/uri", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[dto.TokenURIResponse](t, w).ResolvedURL)
	})

	t.Run("unreachable gateways", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().TokenURI(uint64(1)).Return(testURI, nil)
		tm.resolver.EXPECT().Resolve(gomock.Any(), testURI).Return("", errors.New("content unreachable"))

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/uri?resolve=true", "", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestListing(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().ListForSale(gomock.Any(), creator, uint64(1), big.NewInt(2000)).
			Return(testArtwork(creator, 2000, true), nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/listing", creator, dto.PriceRequest{Price: "2000"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2000", decode[dto.ArtworkResponse](t, w).CurrentPrice)
	})

	t.Run("not owner", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().UpdatePrice(gomock.Any(), collector, uint64(1), big.NewInt(5)).
			Return(nil, domain.ErrNotOwner)

		w := tm.do(http.MethodPatch, "/api/v1/artworks/1/listing", collector, dto.PriceRequest{Price: "5"})

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apierrors.ErrCodeNotOwner, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("unlist when not listed", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().UnlistFromSale(gomock.Any(), creator, uint64(1)).
			Return(nil, domain.ErrNotListed)

		w := tm.do(http.MethodDelete, "/api/v1/artworks/1/listing", creator, nil)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierrors.ErrCodeNotListed, decode[apierrors.APIError](t, w).Code)
	})
}

func TestBuyArtwork(t *testing.T) {
	t.Run("settled", func(t *testing.T) {
		tm := setupTestHandler(t)
		settlement := &marketplace.Settlement{
			Artwork: *testArtwork(collector, 1000, false),
			Record: domain.OwnershipRecord{
				TokenID:        1,
				Sequence:       2,
				Owner:          collector,
				Timestamp:      createdAt,
				Price:          big.NewInt(1000),
				PlatformFee:    big.NewInt(10),
				CreatorRoyalty: big.NewInt(50),
				SaleType:       domain.SaleTypeDirect,
			},
			Breakdown: fee.Breakdown{
				PlatformFee:  big.NewInt(10),
				Royalty:      big.NewInt(50),
				SellerAmount: big.NewInt(940),
			},
			Seller: creator,
			Buyer:  collector,
			Payouts: []domain.Payout{{
				ID:        "01HQ0000000000000000000000",
				Kind:      domain.PayoutKindSellerProceeds,
				TokenID:   1,
				Recipient: creator,
				Amount:    big.NewInt(940),
				Status:    domain.PayoutStatusPending,
			}},
		}
		tm.marketplace.EXPECT().BuyArtwork(gomock.Any(), collector, uint64(1), big.NewInt(1000)).
			Return(settlement, nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/purchase", collector, dto.PurchaseRequest{Amount: "1000"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.SettlementResponse](t, w)
		assert.Equal(t, "10", resp.PlatformFee)
		assert.Equal(t, "50", resp.Royalty)
		assert.Equal(t, "940", resp.SellerAmount)
		assert.Equal(t, domain.SaleTypeDirect, resp.Record.SaleType)
		require.Len(t, resp.Payouts, 1)
		assert.Equal(t, "940", resp.Payouts[0].Amount)
	})

	t.Run("insufficient payment", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().BuyArtwork(gomock.Any(), collector, uint64(1), big.NewInt(999)).
			Return(nil, domain.ErrInsufficientPayment)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/purchase", collector, dto.PurchaseRequest{Amount: "999"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apierrors.ErrCodeInsufficientPayment, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().BuyArtwork(gomock.Any(), collector, uint64(1), big.NewInt(1000)).
			Return(nil, errors.New("commit failed"))

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/purchase", collector, dto.PurchaseRequest{Amount: "1000"})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apierrors.ErrCodeInternalError, decode[apierrors.APIError](t, w).Code)
	})
}

func TestAuctions(t *testing.T) {
	auction := &domain.Auction{
		TokenID:    1,
		Seller:     creator,
		StartPrice: big.NewInt(100),
		CurrentBid: big.NewInt(0),
		EndTime:    createdAt.Add(24 * time.Hour),
		Active:     true,
		CreatedAt:  createdAt,
	}

	t.Run("create", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().CreateAuction(gomock.Any(), creator, uint64(1), big.NewInt(100), uint64(24)).
			Return(auction, nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction", creator, dto.CreateAuctionRequest{
			StartPrice:    "100",
			DurationHours: 24,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decode[dto.AuctionResponse](t, w)
		assert.True(t, resp.Active)
		assert.Nil(t, resp.TimeRemaining)
	})

	t.Run("zero duration", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().CreateAuction(gomock.Any(), creator, uint64(1), big.NewInt(100), uint64(0)).
			Return(nil, fmt.Errorf("%w: 0 hours is outside [1, 168]", domain.ErrDurationOutOfRange))

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction", creator, dto.CreateAuctionRequest{
			StartPrice: "100",
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		apiErr := decode[apierrors.APIError](t, w)
		assert.Equal(t, apierrors.ErrCodeDurationOutOfRange, apiErr.Code)
	})

	t.Run("get", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetAuctionInfo(uint64(1)).
			Return(&domain.AuctionInfo{Auction: *auction, TimeRemaining: 90 * time.Minute}, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/auction", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.AuctionResponse](t, w)
		require.NotNil(t, resp.TimeRemaining)
		assert.Equal(t, int64(5400), *resp.TimeRemaining)
	})

	t.Run("get never auctioned", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetAuctionInfo(uint64(1)).Return(nil, domain.ErrNoActiveAuction)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/auction", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bid too low", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().PlaceBid(gomock.Any(), collector, uint64(1), big.NewInt(50)).
			Return(nil, fmt.Errorf("%w: minimum is 100", domain.ErrBidTooLow))

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction/bids", collector, dto.BidRequest{Amount: "50"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		apiErr := decode[apierrors.APIError](t, w)
		assert.Equal(t, apierrors.ErrCodeBidTooLow, apiErr.Code)
		assert.Contains(t, apiErr.Message, "minimum is 100")
	})

	t.Run("seller bids", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().PlaceBid(gomock.Any(), creator, uint64(1), big.NewInt(200)).
			Return(nil, domain.ErrBidderIsSeller)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction/bids", creator, dto.BidRequest{Amount: "200"})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("end without bids", func(t *testing.T) {
		tm := setupTestHandler(t)
		ended := *auction
		ended.Active = false
		tm.marketplace.EXPECT().EndAuction(gomock.Any(), collector, uint64(1)).
			Return(&marketplace.AuctionResult{Auction: ended}, nil)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction/end", collector, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.AuctionResultResponse](t, w)
		assert.False(t, resp.Auction.Active)
		assert.Nil(t, resp.Settlement)
	})

	t.Run("end before expiry", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().EndAuction(gomock.Any(), collector, uint64(1)).
			Return(nil, domain.ErrAuctionNotExpired)

		w := tm.do(http.MethodPost, "/api/v1/artworks/1/auction/end", collector, nil)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierrors.ErrCodeAuctionNotExpired, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("cancel with bids", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().CancelAuction(gomock.Any(), creator, uint64(1)).
			Return(nil, domain.ErrAuctionHasBids)

		w := tm.do(http.MethodDelete, "/api/v1/artworks/1/auction", creator, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetHistory(t *testing.T) {
	records := []domain.OwnershipRecord{
		{TokenID: 1, Sequence: 2, Owner: collector, Timestamp: createdAt.Add(time.Hour), Price: big.NewInt(1000), PlatformFee: big.NewInt(10), CreatorRoyalty: big.NewInt(50), SaleType: domain.SaleTypeDirect},
		{TokenID: 1, Sequence: 1, Owner: creator, Timestamp: createdAt, Price: big.NewInt(0), PlatformFee: big.NewInt(0), CreatorRoyalty: big.NewInt(0), SaleType: domain.SaleTypeMint},
	}

	t.Run("plain", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetOwnershipHistory(uint64(1)).Return(records, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/history", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.HistoryResponse](t, w)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, uint64(2), resp.Records[0].Sequence)
		assert.Empty(t, resp.Records[0].SaleType)
	})

	t.Run("with type", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetOwnershipHistoryWithType(uint64(1)).
			Return(records, []domain.SaleType{domain.SaleTypeDirect, domain.SaleTypeMint}, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/history?with_type=true", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.HistoryResponse](t, w)
		assert.Equal(t, domain.SaleTypeDirect, resp.Records[0].SaleType)
		assert.Equal(t, domain.SaleTypeMint, resp.Records[1].SaleType)
	})

	t.Run("compact", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetCompactedOwnershipHistory(uint64(1)).Return(records[:1], nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/history?compact=true", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[dto.HistoryResponse](t, w).Records, 1)
	})

	t.Run("stats", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetOwnershipStats(uint64(1)).Return(&domain.HistoryStats{
			TotalPlatformFees:     big.NewInt(10),
			TotalCreatorRoyalties: big.NewInt(50),
			TotalVolume:           big.NewInt(1000),
			Sales:                 1,
			Records:               2,
		}, nil)

		w := tm.do(http.MethodGet, "/api/v1/artworks/1/history/stats", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.HistoryStatsResponse](t, w)
		assert.Equal(t, "1000", resp.TotalVolume)
		assert.Equal(t, 1, resp.Sales)
	})
}

func TestPlatform(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetPlatformInfo().Return(domain.PlatformState{
			PlatformFeeBps: 100,
			AccruedFees:    big.NewInt(30),
			TotalSupply:    3,
		})

		w := tm.do(http.MethodGet, "/api/v1/platform", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.PlatformResponse](t, w)
		assert.Equal(t, "30", resp.AccruedFees)
		assert.Equal(t, uint64(domain.PERCENTAGE_BASE), resp.PercentageBase)
	})

	t.Run("update fee", func(t *testing.T) {
		tm := setupTestHandler(t)
		feeBps := uint64(250)
		tm.marketplace.EXPECT().UpdatePlatformFee(gomock.Any(), creator, feeBps).
			Return(&domain.PlatformState{PlatformFeeBps: feeBps, AccruedFees: big.NewInt(0)}, nil)

		w := tm.do(http.MethodPut, "/api/v1/platform/fee", creator, dto.UpdatePlatformFeeRequest{PlatformFeeBps: &feeBps})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, feeBps, decode[dto.PlatformResponse](t, w).PlatformFeeBps)
	})

	t.Run("withdraw with nothing accrued", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().WithdrawPlatformFees(gomock.Any(), creator).Return(nil, domain.ErrNothingToWithdraw)

		w := tm.do(http.MethodPost, "/api/v1/platform/withdraw", creator, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("creator royalties", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.marketplace.EXPECT().GetCreatorRoyalties(creator).Return(big.NewInt(50), nil)

		w := tm.do(http.MethodGet, "/api/v1/creators/"+creator+"/royalties", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "50", decode[dto.RoyaltiesResponse](t, w).Balance)
	})

	t.Run("creator royalties bad address", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodGet, "/api/v1/creators/alice/royalties", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPayouts(t *testing.T) {
	withdrawable := []domain.Payout{{
		ID:        "01HQ0000000000000000000001",
		Kind:      domain.PayoutKindBidRefund,
		TokenID:   1,
		Recipient: collector,
		Amount:    big.NewInt(150),
		Status:    domain.PayoutStatusWithdrawable,
		Attempts:  5,
	}}

	t.Run("list", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.payouts.EXPECT().ListWithdrawable(gomock.Any(), collector).Return(withdrawable, nil)
		tm.payouts.EXPECT().Balance(gomock.Any(), collector).
			Return(&payout.Balance{Pending: big.NewInt(20), Withdrawable: big.NewInt(150)}, nil)

		w := tm.do(http.MethodGet, "/api/v1/payouts", collector, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.PayoutsResponse](t, w)
		assert.Equal(t, collector, resp.Recipient)
		assert.Equal(t, "20", resp.Pending)
		assert.Equal(t, "150", resp.Withdrawable)
		require.Len(t, resp.Payouts, 1)
	})

	t.Run("withdraw", func(t *testing.T) {
		tm := setupTestHandler(t)
		requeued := withdrawable[0].Clone()
		requeued.Status = domain.PayoutStatusPending
		requeued.Attempts = 0
		requeued.Round = 1
		tm.payouts.EXPECT().Withdraw(gomock.Any(), collector).Return([]domain.Payout{requeued}, nil)

		w := tm.do(http.MethodPost, "/api/v1/payouts/withdraw", collector, nil)

		require.Equal(t, http.StatusAccepted, w.Code)
		resp := decode[map[string][]dto.PayoutResponse](t, w)
		require.Len(t, resp["payouts"], 1)
		assert.Equal(t, domain.PayoutStatusPending, resp["payouts"][0].Status)
		assert.Equal(t, 1, resp["payouts"][0].Round)
	})

	t.Run("withdraw nothing", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.payouts.EXPECT().Withdraw(gomock.Any(), collector).Return(nil, domain.ErrNothingToWithdraw)

		w := tm.do(http.MethodPost, "/api/v1/payouts/withdraw", collector, nil)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierrors.ErrCodeNothingToWithdraw, decode[apierrors.APIError](t, w).Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodGet, "/api/v1/payouts", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListEvents(t *testing.T) {
	events := []domain.Event{
		domain.NewEvent(domain.EventArtworkMinted, 1, createdAt, nil),
		domain.NewEvent(domain.EventArtworkListed, 1, createdAt.Add(time.Second), map[string]string{"price": "1000"}),
	}

	t.Run("full page has a cursor", func(t *testing.T) {
		tm := setupTestHandler(t)
		tokenID := uint64(1)
		tm.journal.EXPECT().ListEvents(gomock.Any(), domain.EventFilter{
			TokenID: &tokenID,
			After:   "01HQ",
			Limit:   2,
		}).Return(events, nil)

		w := tm.do(http.MethodGet, "/api/v1/events?token_id=1&after=01HQ&limit=2", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.EventsResponse](t, w)
		require.Len(t, resp.Events, 2)
		assert.Equal(t, events[1].ID, resp.NextCursor)
	})

	t.Run("last page", func(t *testing.T) {
		tm := setupTestHandler(t)
		tm.journal.EXPECT().ListEvents(gomock.Any(), domain.EventFilter{
			Type:  domain.EventArtworkMinted,
			Limit: 50,
		}).Return(events[:1], nil)

		w := tm.do(http.MethodGet, "/api/v1/events?type=artwork.minted", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[dto.EventsResponse](t, w).NextCursor)
	})

	t.Run("limit out of range", func(t *testing.T) {
		tm := setupTestHandler(t)

		w := tm.do(http.MethodGet, "/api/v1/events?limit=100000", "", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestStreamEvents(t *testing.T) {
	tm := setupTestHandler(t)
	server := httptest.NewServer(tm.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return tm.broker.Subscribers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	event := domain.NewEvent(domain.EventBidPlaced, 1, createdAt, map[string]string{"amount": "200"})
	require.NoError(t, tm.broker.Notify(ctx, event))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, "event:"+string(domain.EventBidPlaced), lines[0])
	assert.Contains(t, lines[1], event.ID)

	cancel()
	assert.Eventually(t, func() bool {
		return tm.broker.Subscribers() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
