// Package shubctl implements the commands of the shubctl tool on top of
// the scrapinghub client.
package shubctl

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

// App is the shubctl application. Commands write their output to Out.
type App struct {
	Params *Params
	Out    io.Writer

	conn *scrapinghub.Connection
}

// Params are the connection settings shared by every command.
type Params struct {
	APIKey     string
	BaseURL    string
	StorageURL string
	Timeout    time.Duration
	// ItemsRetries and RetryInterval configure the items command.
	ItemsRetries  int
	RetryInterval time.Duration
	Debug         bool
}

// New returns an App writing to stdout.
func New() *App {
	return &App{
		Params: &Params{},
		Out:    os.Stdout,
	}
}

// connection returns the connection, creating it on first use.
func (a *App) connection() (*scrapinghub.Connection, error) {
	if a.conn != nil {
		return a.conn, nil
	}

	opts := []scrapinghub.Option{
		scrapinghub.WithAPIKey(a.Params.APIKey),
		scrapinghub.WithItemsRetry(scrapinghub.RetryConfig{
			MaxRetries: a.Params.ItemsRetries,
			Interval:   a.Params.RetryInterval,
		}),
	}
	if a.Params.BaseURL != "" {
		opts = append(opts, scrapinghub.WithBaseURL(a.Params.BaseURL))
	}
	if a.Params.StorageURL != "" {
		opts = append(opts, scrapinghub.WithStorageURL(a.Params.StorageURL))
	}
	if a.Params.Timeout > 0 {
		opts = append(opts, scrapinghub.WithTimeout(a.Params.Timeout))
	}
	if a.Params.Debug {
		opts = append(opts, scrapinghub.WithDebug(true))
	} else {
		opts = append(opts, scrapinghub.WithLogger(scrapinghub.NewLogrusLogger(logrus.StandardLogger())))
	}

	conn, err := scrapinghub.NewConnection(opts...)
	if err != nil {
		return nil, err
	}
	a.conn = conn
	return conn, nil
}

// contextWithTimeout bounds a command. The items command is not bounded.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
