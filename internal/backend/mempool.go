package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MempoolBackend implements Backend using the mempool.space API.
// Compatible with mempool.space and self-hosted instances.
type MempoolBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewMempoolBackend creates a new mempool.space backend.
func NewMempoolBackend(baseURL string) *MempoolBackend {
	// Remove trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &MempoolBackend{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Type returns TypeMempool.
func (m *MempoolBackend) Type() Type {
	return TypeMempool
}

// GetAddressInfo returns confirmed funding totals for an address.
// The balance is funded_txo_sum - spent_txo_sum from chain_stats.
func (m *MempoolBackend) GetAddressInfo(ctx context.Context, address string) (*AddressInfo, error) {
	var result struct {
		Address    string `json:"address"`
		ChainStats struct {
			FundedTxoSum uint64 `json:"funded_txo_sum"`
			SpentTxoSum  uint64 `json:"spent_txo_sum"`
			TxCount      int64  `json:"tx_count"`
		} `json:"chain_stats"`
	}

	if err := m.get(ctx, "/address/"+address, &result); err != nil {
		return nil, err
	}

	return &AddressInfo{
		Address:   result.Address,
		FundedSum: result.ChainStats.FundedTxoSum,
		SpentSum:  result.ChainStats.SpentTxoSum,
		TxCount:   result.ChainStats.TxCount,
		Balance:   result.ChainStats.FundedTxoSum - result.ChainStats.SpentTxoSum,
	}, nil
}

// GetAddressUTXOs returns unspent outputs for an address.
func (m *MempoolBackend) GetAddressUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var result []struct {
		TxID   string `json:"txid"`
		Vout   uint32 `json:"vout"`
		Value  uint64 `json:"value"`
		Status struct {
			Confirmed   bool   `json:"confirmed"`
			BlockHeight int64  `json:"block_height"`
			BlockHash   string `json:"block_hash"`
			BlockTime   int64  `json:"block_time"`
		} `json:"status"`
	}

	if err := m.get(ctx, "/address/"+address+"/utxo", &result); err != nil {
		return nil, err
	}

	utxos := make([]UTXO, len(result))
	for i, u := range result {
		utxos[i] = UTXO{
			TxID:        u.TxID,
			Vout:        u.Vout,
			Value:       u.Value,
			Confirmed:   u.Status.Confirmed,
			BlockHeight: u.Status.BlockHeight,
		}
	}

	return utxos, nil
}

// GetFeeEstimates returns fee estimates for different confirmation targets.
func (m *MempoolBackend) GetFeeEstimates(ctx context.Context) (*FeeEstimate, error) {
	var result map[string]float64
	if err := m.get(ctx, "/v1/fees/recommended", &result); err != nil {
		return nil, err
	}

	return &FeeEstimate{
		FastestFee:  uint64(result["fastestFee"]),
		HalfHourFee: uint64(result["halfHourFee"]),
		HourFee:     uint64(result["hourFee"]),
		EconomyFee:  uint64(result["economyFee"]),
		MinimumFee:  uint64(result["minimumFee"]),
	}, nil
}

// GetBlockHeight returns the current block height.
func (m *MempoolBackend) GetBlockHeight(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", m.baseURL+"/blocks/tip/height", nil)
	if err != nil {
		return 0, err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var height int64
	if err := json.Unmarshal(body, &height); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return height, nil
}

// BroadcastTransaction broadcasts a raw transaction. On success the response
// body is the accepted txid; on failure the body is the explorer's rejection
// reason and is returned verbatim inside a BroadcastError.
func (m *MempoolBackend) BroadcastTransaction(ctx context.Context, rawTxHex string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/tx", strings.NewReader(rawTxHex))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &BroadcastError{Reason: strings.TrimSpace(string(body))}
	}

	return strings.TrimSpace(string(body)), nil
}

// get performs a GET request and decodes the JSON response.
func (m *MempoolBackend) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", m.baseURL+path, nil)
	if err != nil {
		return err
	}

	// Cache-busting headers to avoid stale CDN responses
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Ensure MempoolBackend implements Backend
var _ Backend = (*MempoolBackend)(nil)
