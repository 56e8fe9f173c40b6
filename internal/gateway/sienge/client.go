// Package sienge implements the remote gateway for the Sienge ERP. Sienge
// exposes a basic-auth JSON API with offset pagination; sales contracts come
// from a single bulk endpoint partitioned locally, and expense invoices are
// only available as a CSV report export.
package sienge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
)

const component = "SiengeGateway"

const (
	retryAttempts = 4
	pageSize      = 200
)

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      *logger.Logger
}

func NewClient(baseURL, username, password string, log *logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

func (c *Client) Source() string { return gateway.SourceSienge }

func (c *Client) FetchDevelopments(ctx context.Context) ([]gateway.RawRecord, error) {
	return c.getPaginated(ctx, "/api/v1/enterprises", url.Values{})
}

// FetchContracts retrieves every sales contract in one paginated sweep and
// partitions the result by enterprise locally; Sienge charges per request,
// so one bulk fetch beats one call per development by a wide margin.
func (c *Client) FetchContracts(ctx context.Context, developmentExternalIDs []string) (map[string][]gateway.RawRecord, error) {
	wanted := make(map[string]bool, len(developmentExternalIDs))
	for _, id := range developmentExternalIDs {
		wanted[id] = true
	}

	records, err := c.getPaginated(ctx, "/api/v1/sales-contracts", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("bulk contract fetch: %w", err)
	}

	out := make(map[string][]gateway.RawRecord, len(developmentExternalIDs))
	for _, id := range developmentExternalIDs {
		out[id] = nil
	}
	var orphans int
	for _, rec := range records {
		extID := rec["enterpriseId"]
		if extID == "" {
			extID = rec["enterprise_id"]
		}
		if !wanted[extID] {
			orphans++
			continue
		}
		out[extID] = append(out[extID], rec)
	}
	if orphans > 0 {
		c.log.Debug(component, "Bulk contract fetch: total=%d outsideScope=%d", len(records), orphans)
	}
	return out, nil
}

func (c *Client) FetchInstallments(ctx context.Context, contractKey string) ([]gateway.RawRecord, error) {
	params := url.Values{"contractId": {contractKey}}
	return c.getPaginated(ctx, "/api/v1/accounts-receivable/installments", params)
}

// FetchExpenseInvoices pulls the accounts-payable CSV report and flattens
// each row into a RawRecord keyed by column header.
func (c *Client) FetchExpenseInvoices(ctx context.Context, from, to time.Time) ([]gateway.RawRecord, error) {
	params := url.Values{
		"startDate": {from.Format("2006-01-02")},
		"endDate":   {to.Format("2006-01-02")},
	}

	var records []gateway.RawRecord
	err := gateway.WithRetry(ctx, c.log, component, retryAttempts, func() error {
		body, err := c.get(ctx, "/api/v1/reports/accounts-payable.csv", params)
		if err != nil {
			return err
		}
		records, err = recordsFromCSV(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug(component, "Expense invoice report parsed: rows=%d from=%s to=%s",
		len(records), from.Format("2006-01-02"), to.Format("2006-01-02"))
	return records, nil
}

// recordsFromCSV loads the report into a dataframe and re-emits every row as
// a flat header->value map.
func recordsFromCSV(body []byte) ([]gateway.RawRecord, error) {
	df := dataframe.ReadCSV(strings.NewReader(string(body)))
	if df.Error() != nil {
		return nil, fmt.Errorf("parsing CSV report: %w", df.Error())
	}

	names := df.Names()
	records := make([]gateway.RawRecord, 0, df.Nrow())
	for row := 0; row < df.Nrow(); row++ {
		rec := make(gateway.RawRecord, len(names))
		for _, name := range names {
			elem := df.Col(name).Elem(row)
			val := elem.String()
			if val == "NaN" {
				val = ""
			}
			rec[name] = val
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) getPaginated(ctx context.Context, path string, params url.Values) ([]gateway.RawRecord, error) {
	var all []gateway.RawRecord

	for offset := 0; ; offset += pageSize {
		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams.Set("limit", strconv.Itoa(pageSize))
		pageParams.Set("offset", strconv.Itoa(offset))

		var page []gateway.RawRecord
		err := gateway.WithRetry(ctx, c.log, component, retryAttempts, func() error {
			body, err := c.get(ctx, path, pageParams)
			if err != nil {
				return err
			}
			page, err = gateway.RecordsFromJSON(body)
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrServerError, err)
	}
	defer resp.Body.Close()

	if err := gateway.ClassifyStatus(resp.StatusCode); err != nil {
		c.log.Warn(component, "Non-OK upstream response: path=%s status=%d", path, resp.StatusCode)
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
