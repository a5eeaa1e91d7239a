package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/NamanBalaji/modsync/internal/errors"
	"github.com/NamanBalaji/modsync/internal/filesystem"
	"github.com/NamanBalaji/modsync/internal/logger"
	httpPkg "github.com/NamanBalaji/modsync/pkg/http"
)

// ProgressFunc is invoked after every chunk written to disk. Returning an
// error aborts the transfer with that error.
type ProgressFunc func(received, total int64) error

// Fetcher streams remote resources to local files.
type Fetcher struct {
	client *httpPkg.Client
	config *Config
}

// New creates a Fetcher. A nil client gets the package defaults.
func New(client *httpPkg.Client, opts ...ConfigOption) *Fetcher {
	if client == nil {
		client = httpPkg.NewClient()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Fetcher{client: client, config: cfg}
}

// Fetch downloads url into destPath, creating parent directories and
// truncating any previous content. total is 0 when the server does not
// announce a length. Transient transport failures are retried with backoff.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string, onProgress ProgressFunc) error {
	var lastErr error

	for attempt := range f.config.MaxRetries {
		err := f.fetchOnce(ctx, url, destPath, onProgress)
		if err == nil {
			return nil
		}

		lastErr = err
		if ctx.Err() != nil || !errors.IsRetryable(err) {
			return err
		}

		if attempt == f.config.MaxRetries-1 {
			break
		}

		backoff := calculateBackoff(attempt, f.config.RetryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			logger.Debugf("Retrying %s, attempt %d", url, attempt+2)
		}
	}

	logger.Errorf("Fetch of %s failed after %d attempts: %v", url, f.config.MaxRetries, lastErr)

	return lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, destPath string, onProgress ProgressFunc) error {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return errors.NewTransportError(err, url, httpPkg.StatusCode(err), httpPkg.IsRetryable(err))
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body for %s: %v", url, err)
		}
	}()

	total := max(resp.ContentLength, 0)

	if f.config.AtomicWrites {
		return f.writeAtomic(ctx, resp, url, destPath, total, onProgress)
	}

	file, err := filesystem.CreateFile(destPath)
	if err != nil {
		return errors.NewIOError(err, destPath)
	}

	loopErr := f.downloadLoop(ctx, resp, file, url, destPath, total, onProgress)

	if err := file.Close(); err != nil && loopErr == nil {
		return errors.NewIOError(err, destPath)
	}

	return loopErr
}

func (f *Fetcher) writeAtomic(ctx context.Context, resp *http.Response, url, destPath string, total int64, onProgress ProgressFunc) error {
	file, err := filesystem.CreateTemp(destPath)
	if err != nil {
		return errors.NewIOError(err, destPath)
	}

	tmpPath := file.Name()
	committed := false

	defer func() {
		if committed {
			return
		}

		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warnf("Failed to remove temporary file %s: %v", tmpPath, err)
		}
	}()

	if err := f.downloadLoop(ctx, resp, file, url, destPath, total, onProgress); err != nil {
		file.Close()
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return errors.NewIOError(err, destPath)
	}

	if err := file.Close(); err != nil {
		return errors.NewIOError(err, destPath)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.NewIOError(err, destPath)
	}

	committed = true

	return nil
}

func (f *Fetcher) downloadLoop(ctx context.Context, resp *http.Response, file *os.File, url, destPath string, total int64, onProgress ProgressFunc) error {
	buffer := make([]byte, f.config.BufferSize)

	var received int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buffer)

		if n > 0 {
			if _, writeErr := file.Write(buffer[:n]); writeErr != nil {
				return errors.NewIOError(writeErr, destPath)
			}

			received += int64(n)

			if onProgress != nil {
				if progressErr := onProgress(received, total); progressErr != nil {
					return progressErr
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				logger.Debugf("Fetched %s: %d bytes", url, received)
				return nil
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			classified := httpPkg.ClassifyError(err)

			return errors.NewTransportError(classified, url, 0, httpPkg.IsRetryable(classified))
		}
	}
}
