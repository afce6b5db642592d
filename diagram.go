package md2docx

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jinde/go-md2docx/internal/fileutil"
)

// defaultDiagramEndpoint is the Kroki-compatible rendering service.
const defaultDiagramEndpoint = "https://kroki.io"

// maxDiagramImageSize caps the response body read from the service.
const maxDiagramImageSize = 20 << 20

// diagramFailedMarker is rendered before the downgraded code block when a
// diagram cannot be resolved.
const diagramFailedMarker = "[diagram rendering failed]"

// diagramResolver renders diagram source text into a local image asset.
// Implementations cache by exact source text for the duration of a run and
// release their assets on Close.
type diagramResolver interface {
	Resolve(ctx context.Context, source string) (string, error)
	Close()
}

// krokiResolver resolves diagrams against a Kroki-compatible HTTP service.
// Not safe for concurrent use; the pipeline is single-threaded per run.
type krokiResolver struct {
	endpoint string
	client   *http.Client
	cache    map[string]string
	cleanups []func()
}

func newKrokiResolver(endpoint string, timeout time.Duration) *krokiResolver {
	if endpoint == "" {
		endpoint = defaultDiagramEndpoint
	}
	return &krokiResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		cache:    make(map[string]string),
	}
}

// Resolve renders source to a PNG and returns the path of a run-scoped temp
// file. Identical source text resolves to the same asset without a second
// network call.
func (r *krokiResolver) Resolve(ctx context.Context, source string) (string, error) {
	if path, ok := r.cache[source]; ok {
		return path, nil
	}

	payload, err := encodeDiagramSource(source)
	if err != nil {
		return "", err
	}

	url := r.endpoint + "/" + diagramKeyword + "/png"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRequest, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrDiagramStatus, resp.Status)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagramImageSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRequest, err)
	}
	if len(image) == 0 {
		return "", ErrDiagramEmpty
	}

	path, cleanup, err := fileutil.WriteTempFile(image, "png")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRequest, err)
	}

	r.cleanups = append(r.cleanups, cleanup)
	r.cache[source] = path
	return path, nil
}

// Close removes every temp asset created during the run.
func (r *krokiResolver) Close() {
	for _, cleanup := range r.cleanups {
		cleanup()
	}
	r.cleanups = nil
	r.cache = make(map[string]string)
}

// encodeDiagramSource produces the reversible transport encoding the
// service expects: zlib-compressed source, url-safe base64.
func encodeDiagramSource(source string) (string, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte(source)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: %v", ErrDiagramEncode, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramEncode, err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
