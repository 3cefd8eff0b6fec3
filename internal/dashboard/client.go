// internal/dashboard/client.go
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/balaguruva/admin-backend/internal/models"
)

type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceContacts Resource = "contacts"
	ResourceUsers    Resource = "users"
	ResourceOrders   Resource = "orders"
)

var Resources = []Resource{ResourceProducts, ResourceContacts, ResourceUsers, ResourceOrders}

var resourcePaths = map[Resource]string{
	ResourceProducts: "/api/products",
	ResourceContacts: "/api/contacts",
	ResourceUsers:    "/api/users",
	ResourceOrders:   "/api/orders/admin/all",
}

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

var ErrUnknownResource = errors.New("unknown dashboard resource")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Resource Resource
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Resource, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Resource, e.Status)
}

// Retryable reports whether the server may answer differently next time.
func (e *StatusError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// Client reads dashboard resources from the admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	maxRetries int
	retryDelay time.Duration
	log        logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry sets how many times a failed fetch is retried and the fixed
// delay between attempts.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Fetch decodes the data of resource into out. Failures are retried up to
// the configured bound with a fixed delay; cancelling ctx stops both the
// request and any pending retry.
func (c *Client) Fetch(ctx context.Context, resource Resource, out interface{}) error {
	path, ok := resourcePaths[resource]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = c.fetchOnce(ctx, resource, path, out)
		if err == nil || !retryable(err) || attempt >= c.maxRetries {
			return err
		}

		c.log.WithFields(logrus.Fields{
			"resource": resource,
			"attempt":  attempt + 1,
			"error":    err.Error(),
		}).Warn("Dashboard fetch failed, retrying")

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, resource Resource, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", resource, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Resource: resource, Status: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: failed to decode response: %w", resource, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", resource, err)
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

// Snapshot holds whatever loaded plus one error per failed resource.
type Snapshot struct {
	Data   Data
	Errors map[Resource]error
}

func (s *Snapshot) Failed(resource Resource) bool {
	_, ok := s.Errors[resource]
	return ok
}

// Load fetches every resource concurrently. One failed resource never
// prevents the others from loading.
func (c *Client) Load(ctx context.Context) *Snapshot {
	snap := &Snapshot{Errors: make(map[Resource]error)}
	var mu sync.Mutex

	record := func(resource Resource, err error) {
		mu.Lock()
		snap.Errors[resource] = err
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(Resources))

	g.Go(func() error {
		products := []models.Product{}
		if err := c.Fetch(gctx, ResourceProducts, &products); err != nil {
			record(ResourceProducts, err)
			return nil
		}
		snap.Data.Products = products
		return nil
	})
	g.Go(func() error {
		contacts := []models.Contact{}
		if err := c.Fetch(gctx, ResourceContacts, &contacts); err != nil {
			record(ResourceContacts, err)
			return nil
		}
		snap.Data.Contacts = contacts
		return nil
	})
	g.Go(func() error {
		users := []models.UserSummary{}
		if err := c.Fetch(gctx, ResourceUsers, &users); err != nil {
			record(ResourceUsers, err)
			return nil
		}
		snap.Data.Users = users
		return nil
	})
	g.Go(func() error {
		orders := []models.Order{}
		if err := c.Fetch(gctx, ResourceOrders, &orders); err != nil {
			record(ResourceOrders, err)
			return nil
		}
		snap.Data.Orders = orders
		return nil
	})

	g.Wait()
	return snap
}
