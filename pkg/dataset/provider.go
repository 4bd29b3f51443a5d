package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const headRows = 5

// MaxPreviewRows caps Preview.
const MaxPreviewRows = 100

var ErrPreviewRange = fmt.Errorf("preview rows must be between 1 and %d", MaxPreviewRows)

// Summary is what the agent needs to know about the table before writing code.
type Summary struct {
	Path    string     `json:"path"`
	Columns []string   `json:"columns"`
	Rows    int        `json:"rows"`
	Head    [][]string `json:"head"`
}

// Provider loads the dataset from disk, downloading it once if the local copy is missing.
type Provider struct {
	LocalPath string
	RemoteURL string
	Client    *http.Client

	mu      sync.Mutex
	summary *Summary
}

func NewProvider(localPath, remoteURL string) *Provider {
	return &Provider{
		LocalPath: localPath,
		RemoteURL: remoteURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ensure returns an absolute path to a readable copy of the dataset.
func (p *Provider) Ensure(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureLocked(ctx)
}

func (p *Provider) ensureLocked(ctx context.Context) (string, error) {
	abs, err := filepath.Abs(p.LocalPath)
	if err != nil {
		return "", fmt.Errorf("resolve dataset path: %w", err)
	}

	if _, err := os.Stat(abs); err == nil {
		return abs, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat dataset: %w", err)
	}

	if p.RemoteURL == "" {
		return "", fmt.Errorf("dataset %s not found and no remote url configured", abs)
	}
	if err := p.download(ctx, abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (p *Provider) download(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download dataset: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	// Write next to the destination so the rename stays on one filesystem
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".dataset-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// Describe returns columns, row count and the first rows. Cached after the first success.
func (p *Provider) Describe(ctx context.Context) (*Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.summary != nil {
		return p.summary, nil
	}

	path, err := p.ensureLocked(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	summary := &Summary{
		Path:    path,
		Columns: header,
		Head:    make([][]string, 0, headRows),
	}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", summary.Rows+1, err)
		}
		if summary.Rows < headRows {
			summary.Head = append(summary.Head, record)
		}
		summary.Rows++
	}

	p.summary = summary
	return summary, nil
}

// Preview reads up to n leading rows from the file as column->value maps.
func (p *Provider) Preview(ctx context.Context, n int) ([]map[string]string, error) {
	if n < 1 || n > MaxPreviewRows {
		return nil, fmt.Errorf("%w: got %d", ErrPreviewRange, n)
	}

	path, err := p.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rows := make([]map[string]string, 0, n)
	for len(rows) < n {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
