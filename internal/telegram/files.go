package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/service"
)

var downloadClient = &http.Client{Timeout: 60 * time.Second}

// DownloadFile fetches a Telegram file by id and returns its bytes and server path.
// Files above the upload limit fail with domain.ErrSizeLimitExceeded without
// being read in full.
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string) ([]byte, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	if err := service.CheckUploadSize(int64(file.FileSize)); err != nil {
		return nil, "", err
	}

	data, err := download(ctx, b.FileDownloadLink(file))
	if err != nil {
		return nil, "", err
	}
	return data, file.FilePath, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if err := service.CheckUploadSize(int64(len(data))); err != nil {
		return nil, err
	}
	return data, nil
}
