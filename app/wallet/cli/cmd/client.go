package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/ledger/database"
)

// nodeClient appends records to a ledger served by a node.
type nodeClient struct {
	baseURL string
	http    *http.Client
}

func newNodeClient(baseURL string) *nodeClient {
	return &nodeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Append submits the signed record and waits for the node to mine it.
func (c *nodeClient) Append(ctx context.Context, record database.Record, publicKey string, sig []byte) (database.Link, error) {
	data, err := json.Marshal(database.NewSignedRecord(record, publicKey, sig))
	if err != nil {
		return database.Link{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tx/submit", bytes.NewReader(data))
	if err != nil {
		return database.Link{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var link database.Link
	if err := c.do(req, &link); err != nil {
		return database.Link{}, err
	}

	return link, nil
}

func (c *nodeClient) linksByAccount(ctx context.Context, account string) ([]database.LinkData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/ledger/links/account/"+account, nil)
	if err != nil {
		return nil, err
	}

	var links []database.LinkData
	if err := c.do(req, &links); err != nil {
		return nil, err
	}

	return links, nil
}

func (c *nodeClient) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling node: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(v)

	case http.StatusNoContent:
		return nil
	}

	var er errs.Response
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("node responded %d", resp.StatusCode)
	}

	return fmt.Errorf("node responded %d: %s", resp.StatusCode, er.Error)
}
