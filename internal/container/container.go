package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dogceo/dashboard/internal/catalog"
	"dogceo/dashboard/internal/client"
	"dogceo/dashboard/internal/config"
	"dogceo/dashboard/internal/dashboard"
	"dogceo/dashboard/internal/gallery"
	"dogceo/dashboard/internal/proxy"
	"dogceo/dashboard/internal/selection"
	"dogceo/dashboard/internal/server"

	log "github.com/sirupsen/logrus"
)

const Title = "Dog Breeds"

var ErrNoWorkingProxies = errors.New("no working proxies")

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Proxies proxy.ProxySupplier
	Client  client.DogAPIClient
	Server  *server.Server
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	// Initialize ProxySupplier
	timeout := time.Duration(cfg.DogAPI.Timeout) * time.Second
	proxySupplier := proxy.NewProxySupplier(ctx, cfg.DogAPI.Proxies,
		proxy.ReachCheck(cfg.DogAPI.BaseURL+"/breeds/list/all", timeout))
	if len(cfg.DogAPI.Proxies) > 0 && proxySupplier.Len() == 0 {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", ErrNoWorkingProxies)
	}
	container.Proxies = proxySupplier

	container.Client = client.NewDogAPIClient(cfg.DogAPI, proxySupplier)
	container.Server = server.New(cfg.Server, Title, container.NewSession)

	return container, nil
}

// NewSession builds a dashboard session with its own catalog load and synchronizer
func (c *Container) NewSession(id string) *dashboard.Session {
	engine := selection.New(c.Client, catalog.NewLoader(c.Client))

	return dashboard.NewSession(id, engine, dashboard.Options{
		Title: Title,
		Window: gallery.WindowConfig{
			InitialBatches: c.Config.Gallery.InitialBatches,
			BatchSize:      c.Config.Gallery.BatchSize,
			Threshold:      float64(c.Config.Gallery.ScrollThreshold),
		},
		Placeholder: c.Config.Gallery.Placeholder,
	})
}

// Run serves the dashboard until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Infof("Closing with %d active sessions", c.Server.Sessions())
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
