package backend

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// httpOperator addresses a read-mostly HTTP(S) endpoint.
type httpOperator struct {
	client  *http.Client
	baseURL string
}

func newHTTPOperator(config map[string]string) (Operator, error) {
	endpoint := config["endpoint"]
	if endpoint == "" {
		return nil, invalidArgument("http backend requires config[endpoint]")
	}
	return &httpOperator{
		client:  http.DefaultClient,
		baseURL: strings.TrimSuffix(endpoint, "/"),
	}, nil
}

func (o *httpOperator) url(path string) string {
	return o.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (o *httpOperator) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.baseURL+"/", nil)
	if err != nil {
		return internal(err, "failed to build http check request")
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return internal(err, "http reachability check failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return internal(nil, "http endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// List is unsupported for a plain HTTP endpoint: there is no standard
// directory-listing protocol to rely on, so an HTTP-backed DataNode only
// ever serves a single object at a known path.
func (o *httpOperator) List(ctx context.Context, path string) ([]Entry, error) {
	return nil, &Error{Code: ErrUnknown, Message: "http backend does not support listing"}
}

func (o *httpOperator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url(path), nil)
	if err != nil {
		return nil, internal(err, "failed to build http get request")
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, internal(err, "http get failed")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, internal(nil, "http get returned %d", resp.StatusCode)
	}
	return resp.Body, nil
}
