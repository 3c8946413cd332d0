package uri

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

var (
	// ErrNoGateway is returned when a scheme has no configured gateway
	ErrNoGateway = errors.New("no gateway configured")
	// ErrUnreachable is returned when no gateway serves the content
	ErrUnreachable = errors.New("content unreachable")
	// ErrUnsupportedScheme is returned for schemes the resolver does not handle
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
)

// Config holds configuration for the URI resolver
type Config struct {
	// IPFSGateways is the list of IPFS gateways to try, e.g. https://ipfs.io
	IPFSGateways []string
	// ArweaveGateways is the list of Arweave gateways to try, e.g. https://arweave.net
	ArweaveGateways []string
}

// Resolver turns token URIs into fetchable URLs
//
//go:generate mockgen -source=resolver.go -destination=../mocks/uri_resolver.go -package=mocks -mock_names=Resolver=MockURIResolver
type Resolver interface {
	// Resolve maps ipfs:// and ar:// URIs to the first gateway URL answering a HEAD request.
	// http(s) and data: URIs are returned unchanged without a request.
	Resolve(ctx context.Context, uri string) (string, error)
}

type resolver struct {
	httpClient adapter.HTTPClient
	config     *Config
}

// NewResolver creates a new URI resolver
func NewResolver(httpClient adapter.HTTPClient, config *Config) Resolver {
	return &resolver{
		httpClient: httpClient,
		config:     config,
	}
}

func (r *resolver) Resolve(ctx context.Context, uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		path := strings.TrimPrefix(uri, "ipfs://")
		// ipfs://ipfs/<cid> is a common malformed variant
		path = strings.TrimPrefix(path, "ipfs/")
		return r.firstReachable(ctx, "IPFS", gatewayURLs(r.config.IPFSGateways, "ipfs/"+path))

	case strings.HasPrefix(uri, "ar://"):
		txID := strings.TrimPrefix(uri, "ar://")
		return r.firstReachable(ctx, "Arweave", gatewayURLs(r.config.ArweaveGateways, txID))

	case strings.HasPrefix(uri, "http://"),
		strings.HasPrefix(uri, "https://"),
		strings.HasPrefix(uri, "data:"):
		return uri, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri)
}

func gatewayURLs(gateways []string, path string) []string {
	urls := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		urls = append(urls, strings.TrimSuffix(gw, "/")+"/"+path)
	}
	return urls
}

// firstReachable sends a HEAD request to every candidate in parallel and
// returns the first one answering 200. The remaining requests are canceled.
func (r *resolver) firstReachable(ctx context.Context, network string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoGateway, network)
	}

	logger.DebugCtx(ctx, "Resolving via gateways",
		zap.String("network", network),
		zap.Int("gateways", len(candidates)))

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	// cancel the losers, then wait for them to exit
	defer wg.Wait()
	defer cancel()

	type result struct {
		url string
		err error
	}
	// buffered so late senders never block after an early return
	resultCh := make(chan result, len(candidates))

	for _, url := range candidates {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			resp, err := r.httpClient.Head(ctx, url)
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			if err := resp.Body.Close(); err != nil {
				logger.WarnCtx(ctx, "Failed to close response body", zap.Error(err), zap.String("url", url))
			}
			if resp.StatusCode != http.StatusOK {
				resultCh <- result{err: fmt.Errorf("%s returned status %d", url, resp.StatusCode)}
				return
			}
			resultCh <- result{url: url}
		}(url)
	}

	var errs []error
	for range candidates {
		res := <-resultCh
		if res.err == nil {
			logger.DebugCtx(ctx, "Found working gateway", zap.String("url", res.url))
			return res.url, nil
		}
		errs = append(errs, res.err)
	}

	return "", fmt.Errorf("%w via %s gateways: %w", ErrUnreachable, network, errors.Join(errs...))
}
