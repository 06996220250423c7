package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxParallelChecks = 16

// ProxySupplier hands out outbound proxies for the provider client
type ProxySupplier interface {
	// Get returns the next proxy URL, or "" when requests should go direct
	Get() string
	Len() int
}

type proxySupplier struct {
	proxies []string
	next    int
	mutex   sync.Mutex
}

// Checker reports whether a proxy can reach the provider
type Checker func(ctx context.Context, proxyURL string) bool

// NewProxySupplier keeps the proxies that pass check, in their configured order.
// A nil check accepts every proxy.
func NewProxySupplier(ctx context.Context, proxies []string, check Checker) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{}
	}
	if check == nil {
		return &proxySupplier{proxies: append([]string(nil), proxies...)}
	}

	log.Infof("🔄 Checking %d proxies...", len(proxies))

	working := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			working[i] = check(gctx, proxyURL)
			if working[i] {
				log.Debugf("✅ Proxy %s is working", proxyURL)
			} else {
				log.Warnf("❌ Proxy %s is not working, skipping", proxyURL)
			}
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range working {
		if ok {
			valid = append(valid, proxies[i])
		}
	}

	log.Infof("✅ Using %d working proxies out of %d", len(valid), len(proxies))
	return &proxySupplier{proxies: valid}
}

// Get returns the next proxy URL in round-robin fashion
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return proxy
}

func (p *proxySupplier) Len() int {
	return len(p.proxies)
}

// ReachCheck returns a Checker that requests testURL through each proxy.
func ReachCheck(testURL string, timeout time.Duration) Checker {
	return func(ctx context.Context, proxyURL string) bool {
		client := resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetProxy(proxyURL)
		defer client.Close()

		resp, err := client.R().
			SetContext(ctx).
			Get(testURL)
		if err != nil {
			log.Debugf("Proxy check failed for %s: %v", proxyURL, err)
			return false
		}
		if resp.IsError() {
			log.Debugf("Proxy check failed for %s with status: %s", proxyURL, resp.Status())
			return false
		}
		return true
	}
}
