package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"dogceo/dashboard/internal/config"
	"dogceo/dashboard/internal/domain"
	"dogceo/dashboard/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const statusSuccess = "success"

// Scope selects category-wide or sub-category endpoints. An empty SubCategory means category-wide.
type Scope struct {
	Category    string
	SubCategory string
}

func (s Scope) String() string {
	if s.SubCategory == "" {
		return s.Category
	}
	return s.Category + "/" + s.SubCategory
}

func (s Scope) path() string {
	p := "/breed/" + url.PathEscape(s.Category)
	if s.SubCategory != "" {
		p += "/" + url.PathEscape(s.SubCategory)
	}
	return p
}

// DogAPIClient is the remote data provider. Every failure is returned as *FetchError.
type DogAPIClient interface {
	ListAll(ctx context.Context) (domain.Catalog, error)
	Images(ctx context.Context, scope Scope) (*domain.ImageList, error)
	RandomImage(ctx context.Context, scope Scope) (domain.ImageRecord, error)
	// Probe checks that an image resource can be loaded
	Probe(ctx context.Context, src string) error
	Close() error
}

type dogAPIClient struct {
	rl            ratelimit.Limiter
	baseURL       string
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier
	proxyMutex    sync.Mutex
}

type envelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
}

func NewDogAPIClient(cfg config.DogAPIConfig, proxySupplier proxy.ProxySupplier) DogAPIClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &dogAPIClient{
		rl:            rl,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    client,
		proxySupplier: proxySupplier,
	}
}

func (c *dogAPIClient) ListAll(ctx context.Context) (domain.Catalog, error) {
	message, err := c.fetchMessage(ctx, "/breeds/list/all")
	if err != nil {
		return domain.EmptyCatalog, &FetchError{Op: OpListAll, Err: err}
	}

	entries, err := decodeCatalog(message)
	if err != nil {
		return domain.EmptyCatalog, &FetchError{Op: OpListAll, Err: err}
	}

	log.Debugf("Fetched catalog with %d categories", len(entries))
	return domain.NewCatalog(entries), nil
}

func (c *dogAPIClient) Images(ctx context.Context, scope Scope) (*domain.ImageList, error) {
	message, err := c.fetchMessage(ctx, scope.path()+"/images")
	if err != nil {
		return nil, &FetchError{Op: OpImages, Scope: scope, Err: err}
	}

	var srcs []string
	if err := json.Unmarshal(message, &srcs); err != nil {
		return nil, &FetchError{Op: OpImages, Scope: scope, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}

	log.Debugf("Fetched %d images for %s", len(srcs), scope)
	return domain.NewImageList(srcs), nil
}

func (c *dogAPIClient) RandomImage(ctx context.Context, scope Scope) (domain.ImageRecord, error) {
	message, err := c.fetchMessage(ctx, scope.path()+"/images/random")
	if err != nil {
		return domain.ImageRecord{}, &FetchError{Op: OpRandomImage, Scope: scope, Err: err}
	}

	var src string
	if err := json.Unmarshal(message, &src); err != nil || src == "" {
		return domain.ImageRecord{}, &FetchError{Op: OpRandomImage, Scope: scope, Err: fmt.Errorf("%w: expected image url", ErrDecode)}
	}

	return domain.NewImageRecord(src), nil
}

func (c *dogAPIClient) Probe(ctx context.Context, src string) error {
	if err := c.take(ctx); err != nil {
		return &FetchError{Op: OpProbe, Err: err}
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Head(src)
	if err != nil {
		return &FetchError{Op: OpProbe, Err: err}
	}
	if resp.IsError() {
		return &FetchError{Op: OpProbe, Err: fmt.Errorf("%w: %s", ErrHTTP, resp.Status())}
	}
	return nil
}

func (c *dogAPIClient) Close() error {
	return c.httpClient.Close()
}

// take waits for the rate limiter, then gives up if ctx ended meanwhile.
func (c *dogAPIClient) take(ctx context.Context) error {
	c.rl.Take()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}
	return nil
}

func (c *dogAPIClient) fetchMessage(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.take(ctx); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.baseURL + path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.rotateProxy()
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d %s", ErrHTTP, resp.StatusCode(), resp.Status())
	}

	var env envelope
	if err := json.Unmarshal([]byte(resp.String()), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Status != statusSuccess {
		return nil, fmt.Errorf("%w: status %q", ErrStatus, env.Status)
	}

	return env.Message, nil
}

// rotateProxy moves to the next proxy after a transport failure.
func (c *dogAPIClient) rotateProxy() {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}

	c.proxyMutex.Lock()
	defer c.proxyMutex.Unlock()

	if next := c.proxySupplier.Get(); next != "" {
		log.Infof("🔄 Switching to proxy: %s", next)
		c.httpClient.SetProxy(next)
	}
}

// decodeCatalog reads the category object keeping the provider's key order.
func decodeCatalog(message json.RawMessage) ([]domain.CatalogEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(message))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected category object", ErrDecode)
	}

	entries := make([]domain.CatalogEntry, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		category, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected category name", ErrDecode)
		}

		var subs []string
		if err := dec.Decode(&subs); err != nil {
			return nil, fmt.Errorf("%w: sub-categories of %s: %v", ErrDecode, category, err)
		}
		entries = append(entries, domain.CatalogEntry{Category: category, SubCategories: subs})
	}

	return entries, nil
}
