package domain

import "time"

const (
	// Fee constants, all rates are basis points over PERCENTAGE_BASE
	PERCENTAGE_BASE      = 10000
	MAX_ROYALTY          = 2000
	MAX_PLATFORM_FEE     = 1000
	DEFAULT_PLATFORM_FEE = 100
	DEFAULT_ROYALTY      = 100

	// Auction constants
	MIN_BID_INCREMENT_NUMERATOR   = 105
	MIN_BID_INCREMENT_DENOMINATOR = 100
	MIN_AUCTION_DURATION_HOURS    = 1
	MAX_AUCTION_DURATION_HOURS    = 168

	// Gateway constants
	DEFAULT_IPFS_GATEWAY    = "https://ipfs.io"
	DEFAULT_ARWEAVE_GATEWAY = "https://arweave.net"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)

// AuctionDuration converts a duration in whole hours into a time.Duration
func AuctionDuration(hours uint64) time.Duration {
	return time.Duration(hours) * time.Hour //nolint:gosec,G115
}
