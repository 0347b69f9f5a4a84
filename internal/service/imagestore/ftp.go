package imagestore

import (
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"porosity-hmi/internal/config"
)

// Fetcher downloads the bytes of a remote image path.
type Fetcher interface {
	Fetch(ctx context.Context, imagePath string) ([]byte, error)
}

// FTPFetcher opens one FTP session per download.
type FTPFetcher struct {
	addr     string
	username string
	password string
	basePath string
	timeout  time.Duration
}

func NewFTPFetcher(cfg config.FTPConfig) *FTPFetcher {
	return &FTPFetcher{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		username: cfg.Username,
		password: cfg.Password,
		basePath: cfg.BasePath,
		timeout:  cfg.Timeout,
	}
}

// RemotePath joins the configured base path with the image path.
func (f *FTPFetcher) RemotePath(imagePath string) string {
	return remotePath(f.basePath, imagePath)
}

func remotePath(basePath, imagePath string) string {
	imagePath = strings.TrimPrefix(imagePath, "/")
	if basePath == "" {
		return imagePath
	}
	return strings.TrimSuffix(basePath, "/") + "/" + imagePath
}

func (f *FTPFetcher) Fetch(ctx context.Context, imagePath string) ([]byte, error) {
	host, _, _ := net.SplitHostPort(f.addr)
	if host == "" || f.username == "" || f.password == "" {
		return nil, fmt.Errorf("missing FTP configuration parameters: %w", ErrImageAccess)
	}

	conn, err := ftp.Dial(f.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP server %s: %w", f.addr, err)
	}
	defer conn.Quit()

	if err := conn.Login(f.username, f.password); err != nil {
		return nil, fmt.Errorf("failed to log in to FTP server: %w", err)
	}

	remote := path.Clean(f.RemotePath(imagePath))
	resp, err := conn.Retr(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", remote, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", remote, err)
	}
	return data, nil
}
