package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTxNotFound means the RPC node has no record of the signature yet.
	// Distinct from a transaction that landed and failed.
	ErrTxNotFound = errors.New("transaction not found")
)

// RPCClient talks JSON-RPC to a Solana node. Calls carry a bounded timeout
// and a bounded number of retries with a fixed delay; exhausting retries
// surfaces the last error, never an infinite hang.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

func NewRPCClient(endpoint string, timeoutMS, maxRetries int, log *zap.Logger) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		maxRetries: maxRetries,
		retryDelay: 500 * time.Millisecond,
		log:        log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("rpc unavailable: %w", err)
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("rpc returned %d: %s", resp.StatusCode, string(raw))
			continue
		}

		var envelope struct {
			Result json.RawMessage `json:"result"`
			Error  *rpcError       `json:"error"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			lastErr = err
			continue
		}
		if envelope.Error != nil {
			lastErr = fmt.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
			continue
		}

		if string(envelope.Result) == "null" || len(envelope.Result) == 0 {
			return ErrTxNotFound
		}
		return json.Unmarshal(envelope.Result, result)
	}

	c.log.Warn("rpc call failed after retries",
		zap.String("method", method), zap.Int("attempts", c.maxRetries+1), zap.Error(lastErr))
	return lastErr
}

// --- getTokenAccountsByOwner ---

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount struct {
							UIAmount       *float64 `json:"uiAmount"`
							UIAmountString string   `json:"uiAmountString"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// GetTokenBalance sums nothing: like the original client it reads the first
// token account for the (owner, mint) pair, returning 0 when none exists.
func (c *RPCClient) GetTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	params := []any{
		owner,
		map[string]any{"mint": mint},
		map[string]any{"encoding": "jsonParsed"},
	}

	var result tokenAccountsResult
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		if errors.Is(err, ErrTxNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if len(result.Value) == 0 {
		return 0, nil
	}
	amount := result.Value[0].Account.Data.Parsed.Info.TokenAmount
	if amount.UIAmount == nil {
		return 0, nil
	}
	return *amount.UIAmount, nil
}

// --- getTransaction ---

type Transaction struct {
	Meta        *TxMeta `json:"meta"`
	Transaction TxBody  `json:"transaction"`
}

type TxMeta struct {
	// Err is null on success, an arbitrary object on failure.
	Err json.RawMessage `json:"err"`
}

// Failed reports whether the transaction landed on chain but errored.
func (m *TxMeta) Failed() bool {
	return m != nil && len(m.Err) > 0 && string(m.Err) != "null"
}

type TxBody struct {
	Message TxMessage `json:"message"`
}

type TxMessage struct {
	Instructions []Instruction `json:"instructions"`
}

type Instruction struct {
	// Parsed is only present for instructions the node could decode; raw
	// instructions carry "data" instead. Memo instructions serialize
	// "parsed" as a bare string, hence the RawMessage.
	Parsed json.RawMessage `json:"parsed,omitempty"`
}

type ParsedInstruction struct {
	Type string          `json:"type"`
	Info BurnInstruction `json:"info"`
}

type BurnInstruction struct {
	Mint      string `json:"mint"`
	Authority string `json:"authority"`
	Amount    string `json:"amount"`
}

// ParsedInstruction decodes the instruction's parsed payload, or returns
// false when the instruction was not parseable as an object.
func (i Instruction) ParsedInstruction() (ParsedInstruction, bool) {
	if len(i.Parsed) == 0 {
		return ParsedInstruction{}, false
	}
	var p ParsedInstruction
	if err := json.Unmarshal(i.Parsed, &p); err != nil {
		return ParsedInstruction{}, false
	}
	return p, true
}

// GetTransaction fetches a confirmed transaction by signature. Returns
// ErrTxNotFound when the node has not indexed the signature.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	params := []any{
		signature,
		map[string]any{"encoding": "jsonParsed", "maxSupportedTransactionVersion": 0},
	}

	var tx Transaction
	if err := c.call(ctx, "getTransaction", params, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
