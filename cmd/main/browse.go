package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"dogceo/dashboard/internal/client"
	"dogceo/dashboard/internal/container"
	"dogceo/dashboard/internal/dashboard"
	"dogceo/dashboard/internal/gallery"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxParallelProbes = 8

type browseOptions struct {
	category    string
	subCategory string
	scrolls     int
	timeout     time.Duration
}

func newBrowseCmd(a *rootOptions) *cobra.Command {
	opts := browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Print the dashboard for a breed in the terminal",
		Example: `  # First breed of the catalog
  dogdash browse

  # A sub breed, with two extra batches per image list
  dogdash browse --category hound --subcategory afghan --scrolls 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.New(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}
			defer c.Close()

			return browse(cmd.Context(), c, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "Breed to select (default: first breed)")
	cmd.Flags().StringVar(&opts.subCategory, "subcategory", "", "Sub breed to select (default: first sub breed)")
	cmd.Flags().IntVar(&opts.scrolls, "scrolls", 0, "Number of times to scroll each panel to the bottom")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Time allowed for loading")

	return cmd
}

func browse(ctx context.Context, c *container.Container, opts browseOptions, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	session := c.NewSession(uuid.NewString())

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()
	defer func() {
		stop()
		if err := <-done; err != nil {
			log.Warnf("⚠️ Session ended with error: %v", err)
		}
	}()

	if err := session.WaitSettled(ctx); err != nil {
		return fmt.Errorf("catalog did not load: %w", err)
	}
	if opts.category != "" {
		if err := session.SelectCategoryByName(ctx, opts.category); err != nil {
			return err
		}
		if err := session.WaitSettled(ctx); err != nil {
			return fmt.Errorf("images for %s did not load: %w", opts.category, err)
		}
	}
	if opts.subCategory != "" {
		if err := session.SelectSubCategoryByName(ctx, opts.subCategory); err != nil {
			return err
		}
		if err := session.WaitSettled(ctx); err != nil {
			return fmt.Errorf("images for %s did not load: %w", opts.subCategory, err)
		}
	}

	for _, id := range dashboard.PanelIDs() {
		for range opts.scrolls {
			if _, err := session.Scroll(id, gallery.Metrics{}); err != nil {
				return err
			}
		}
	}

	if err := probeVisible(ctx, c.Client, session); err != nil {
		return err
	}

	return dashboard.RenderText(out, session.View())
}

// probeVisible checks every rendered image and reports the outcome to the session.
func probeVisible(ctx context.Context, c client.DogAPIClient, session *dashboard.Session) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProbes)

	for _, id := range dashboard.PanelIDs() {
		images, err := session.VisibleImages(id)
		if err != nil {
			return err
		}

		for imageID, src := range images {
			g.Go(func() error {
				report := session.ImageLoaded
				if err := c.Probe(ctx, src); err != nil {
					log.Debugf("Image %s unavailable: %v", src, err)
					report = session.ImageFailed
				}
				if err := report(id, imageID); err != nil && !errors.Is(err, dashboard.ErrUnknownImage) {
					return err
				}
				return nil
			})
		}
	}

	return g.Wait()
}
