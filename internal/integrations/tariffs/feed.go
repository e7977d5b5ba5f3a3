package tariffs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/rental-service/internal/billing"
)

// FeedClient fetches utility tariffs published as an XML document
type FeedClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewFeedClient initializes a new tariff feed client
func NewFeedClient(url string, log *logrus.Logger) *FeedClient {
	return &FeedClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch downloads the raw feed document
func (c *FeedClient) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Tariff feed response: %s", string(body))
	return body, nil
}

// parseFeed overlays the values present in the document onto base
func parseFeed(raw []byte, base billing.Tariffs) (billing.Tariffs, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return base, fmt.Errorf("failed to parse XML: %w", err)
	}
	if doc.FindElement("//Tariffs") == nil {
		return base, fmt.Errorf("no Tariffs element found in XML")
	}

	out := base
	fields := []struct {
		path string
		dst  *int64
	}{
		{"//Tariffs/Tariff[@provider='UEDCL']/Rate", &out.UEDCLPerUnit},
		{"//Tariffs/Tariff[@provider='NSWC']/Rate", &out.NSWCPerUnit},
		{"//Tariffs/Fee[@name='security']", &out.SecurityFee},
		{"//Tariffs/Fee[@name='garbage']", &out.GarbageFee},
	}
	for _, f := range fields {
		el := doc.FindElement(f.path)
		if el == nil {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
		if err != nil {
			return base, fmt.Errorf("invalid value at %s: %w", f.path, err)
		}
		if v < 0 {
			return base, fmt.Errorf("negative value at %s", f.path)
		}
		*f.dst = v
	}
	return out, nil
}

// Fetch retrieves the published tariffs. Values absent from the feed keep their value in base.
func (c *FeedClient) Fetch(ctx context.Context, base billing.Tariffs) (billing.Tariffs, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return base, err
	}
	t, err := parseFeed(body, base)
	if err != nil {
		return base, err
	}
	c.log.Infof("Retrieved tariffs: UEDCL %d/unit, NSWC %d/unit, security %d, garbage %d",
		t.UEDCLPerUnit, t.NSWCPerUnit, t.SecurityFee, t.GarbageFee)
	return t, nil
}

// Refresh fetches the feed and installs the result into book.
// On failure the tariffs in book are left untouched.
func (c *FeedClient) Refresh(ctx context.Context, book *billing.TariffBook) error {
	t, err := c.Fetch(ctx, book.Current())
	if err != nil {
		return fmt.Errorf("tariff refresh failed: %w", err)
	}
	book.Update(t)
	return nil
}
