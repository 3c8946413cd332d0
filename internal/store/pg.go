package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/store/schema"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// idle connections never exceed the open limit
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Ping checks the database connection
func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Commit persists the change set of one marketplace operation in a single transaction
func (s *pgStore) Commit(ctx context.Context, changes *domain.ChangeSet) error {
	if changes == nil {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Upsert the artwork row
		if changes.Artwork != nil {
			artwork := toSchemaArtwork(changes.Artwork)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"current_owner", "current_price", "is_for_sale", "updated_at",
				}),
			}).Create(&artwork).Error; err != nil {
				return fmt.Errorf("failed to upsert artwork: %w", err)
			}
		}

		// 2. Upsert the auction row
		if changes.Auction != nil {
			auction := toSchemaAuction(changes.Auction)
			if err := tx.Omit("Artwork").Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"seller", "start_price", "current_bid", "highest_bidder",
					"end_time", "active", "created_at", "updated_at",
				}),
			}).Create(&auction).Error; err != nil {
				return fmt.Errorf("failed to upsert auction: %w", err)
			}
		}

		// 3. Append the ownership record
		if changes.Record != nil {
			record := toSchemaOwnershipRecord(changes.Record)
			if err := tx.Omit("Artwork").Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create ownership record: %w", err)
			}
		}

		// 4. Credit the creator royalty
		if changes.Royalty != nil && changes.Royalty.Amount != nil && changes.Royalty.Amount.Sign() != 0 {
			royalty := schema.CreatorRoyalty{
				Creator:   changes.Royalty.Creator,
				Amount:    changes.Royalty.Amount.String(),
				UpdatedAt: time.Now().UTC(),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "creator"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"amount":     gorm.Expr("creator_royalties.amount + EXCLUDED.amount"),
					"updated_at": gorm.Expr("EXCLUDED.updated_at"),
				}),
			}).Create(&royalty).Error; err != nil {
				return fmt.Errorf("failed to credit royalty: %w", err)
			}
		}

		// 5. Update the platform state
		if err := updatePlatformState(tx, changes); err != nil {
			return err
		}

		// 6. Outbox: payouts and events commit with the state change
		if len(changes.Payouts) > 0 {
			if err := insertPayouts(tx, changes.Payouts); err != nil {
				return err
			}
		}
		if len(changes.Events) > 0 {
			events := make([]schema.MarketplaceEvent, 0, len(changes.Events))
			for _, e := range changes.Events {
				event, err := toSchemaEvent(e)
				if err != nil {
					return err
				}
				events = append(events, event)
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).Create(&events).Error; err != nil {
				return fmt.Errorf("failed to journal events: %w", err)
			}
		}

		return nil
	})
}

func updatePlatformState(tx *gorm.DB, changes *domain.ChangeSet) error {
	updates := make(map[string]interface{})
	if changes.PlatformFeeDelta != nil && changes.PlatformFeeDelta.Sign() != 0 {
		updates["accrued_fees"] = gorm.Expr("accrued_fees + ?", changes.PlatformFeeDelta.String())
	}
	if changes.PlatformFeeBps != nil {
		updates["platform_fee_bps"] = int64(*changes.PlatformFeeBps) //nolint:gosec,G115
	}
	if changes.TotalSupply != nil {
		updates["total_supply"] = int64(*changes.TotalSupply) //nolint:gosec,G115
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = gorm.Expr("now()")

	result := tx.Model(&schema.PlatformState{}).
		Where("id = ?", schema.PLATFORM_STATE_ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update platform state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update platform state: not initialized")
	}
	return nil
}

func insertPayouts(tx *gorm.DB, payouts []domain.Payout) error {
	rows := make([]schema.Payout, len(payouts))
	for i := range payouts {
		rows[i] = toSchemaPayout(&payouts[i])
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert payouts: %w", err)
	}
	return nil
}

// InitPlatformState creates the platform state row with the given fee rate if it does not exist
func (s *pgStore) InitPlatformState(ctx context.Context, platformFeeBps uint64) error {
	state := schema.PlatformState{
		ID:             schema.PLATFORM_STATE_ID,
		PlatformFeeBps: int64(platformFeeBps), //nolint:gosec,G115
		AccruedFees:    "0",
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("failed to initialize platform state: %w", err)
	}
	return nil
}

// LoadSnapshot reads the full marketplace state
func (s *pgStore) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	db := s.db.WithContext(ctx)
	snapshot := &domain.Snapshot{Royalties: make(map[string]*big.Int)}

	var artworks []schema.Artwork
	if err := db.Order("token_id ASC").Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to load artworks: %w", err)
	}
	for i := range artworks {
		a, err := toDomainArtwork(&artworks[i])
		if err != nil {
			return nil, err
		}
		snapshot.Artworks = append(snapshot.Artworks, *a)
	}

	var auctions []schema.Auction
	if err := db.Order("token_id ASC").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("failed to load auctions: %w", err)
	}
	for i := range auctions {
		a, err := toDomainAuction(&auctions[i])
		if err != nil {
			return nil, err
		}
		snapshot.Auctions = append(snapshot.Auctions, *a)
	}

	var records []schema.OwnershipRecord
	if err := db.Order("token_id ASC, sequence ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load ownership records: %w", err)
	}
	for i := range records {
		r, err := toDomainOwnershipRecord(&records[i])
		if err != nil {
			return nil, err
		}
		snapshot.Records = append(snapshot.Records, *r)
	}

	var royalties []schema.CreatorRoyalty
	if err := db.Find(&royalties).Error; err != nil {
		return nil, fmt.Errorf("failed to load creator royalties: %w", err)
	}
	for _, r := range royalties {
		amount, err := parseNumeric(r.Amount)
		if err != nil {
			return nil, err
		}
		snapshot.Royalties[r.Creator] = amount
	}

	var platform schema.PlatformState
	err := db.Where("id = ?", schema.PLATFORM_STATE_ID).First(&platform).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load platform state: %w", err)
	default:
		p, err := toDomainPlatformState(&platform)
		if err != nil {
			return nil, err
		}
		snapshot.Platform = p
	}

	return snapshot, nil
}

// ListEvents returns journaled events in id order
func (s *pgStore) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	query := s.db.WithContext(ctx).Model(&schema.MarketplaceEvent{})
	if filter.TokenID != nil {
		query = query.Where("token_id = ?", int64(*filter.TokenID)) //nolint:gosec,G115
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.After != "" {
		query = query.Where("id > ?", filter.After)
	}

	var rows []schema.MarketplaceEvent
	if err := query.Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]domain.Event, 0, len(rows))
	for i := range rows {
		e, err := toDomainEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}

// SavePayouts inserts payouts, leaving existing ids untouched
func (s *pgStore) SavePayouts(ctx context.Context, payouts ...domain.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	return insertPayouts(s.db.WithContext(ctx), payouts)
}

// GetPayout retrieves a payout by id
func (s *pgStore) GetPayout(ctx context.Context, id string) (*domain.Payout, error) {
	var row schema.Payout
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPayoutNotFound, id)
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return toDomainPayout(&row)
}

// UpdatePayout writes the mutable payout fields if the stored status is still expected
func (s *pgStore) UpdatePayout(ctx context.Context, payout *domain.Payout, expected domain.PayoutStatus) error {
	var lastError *string
	if payout.LastError != "" {
		lastError = &payout.LastError
	}

	result := s.db.WithContext(ctx).Model(&schema.Payout{}).
		Where("id = ? AND status = ?", payout.ID, string(expected)).
		Updates(map[string]interface{}{
			"status":     string(payout.Status),
			"attempts":   payout.Attempts,
			"round":      payout.Round,
			"last_error": lastError,
			"updated_at": payout.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payout: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// nothing matched: tell a missing payout from a concurrent transition
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.Payout{}).Where("id = ?", payout.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check payout: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPayoutNotFound, payout.ID)
	}
	return fmt.Errorf("%w: %s is no longer %s", domain.ErrPayoutStateChanged, payout.ID, expected)
}

// ListPayouts returns payouts matching filter ordered by id
func (s *pgStore) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	query := s.db.WithContext(ctx).Model(&schema.Payout{})
	if filter.Recipient != "" {
		query = query.Where("recipient = ?", filter.Recipient)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if !filter.UpdatedBefore.IsZero() {
		query = query.Where("updated_at < ?", filter.UpdatedBefore)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []schema.Payout
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	payouts := make([]domain.Payout, 0, len(rows))
	for i := range rows {
		p, err := toDomainPayout(&rows[i])
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, nil
}
