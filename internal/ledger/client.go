package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"warranty/pkg/platform/circuit"
	"warranty/pkg/platform/retry"
)

// Backend is the node surface the client needs. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Config identifies the contract and the signing account.
type Config struct {
	ContractAddress string
	PrivateKeyHex   string
	ChainID         int64
	Timeout         time.Duration
}

// Client talks to the warranty contract.
type Client struct {
	backend  Backend
	contract *bind.BoundContract
	address  common.Address
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	timeout  time.Duration

	breaker *circuit.Breaker
	retry   retry.Strategy
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBreaker guards read-only calls. An open breaker fails reads fast.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithQueryRetry retries QueryEvents on transient failures.
func WithQueryRetry(s retry.Strategy) Option {
	return func(c *Client) {
		c.retry = s
	}
}

// WithABI overrides the built-in contract ABI.
func WithABI(contractABI abi.ABI) Option {
	return func(c *Client) {
		c.abi = contractABI
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// Dial connects to rpcURL and builds a Client.
func Dial(ctx context.Context, rpcURL string, cfg Config, opts ...Option) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger: %w", err)
	}
	c, err := New(eth, cfg, opts...)
	if err != nil {
		eth.Close()
		return nil, err
	}
	return c, nil
}

func New(backend Backend, cfg Config, opts ...Option) (*Client, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	key, err := crypto.HexToECDSA(cfg.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse ledger private key: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		backend: backend,
		address: common.HexToAddress(cfg.ContractAddress),
		abi:     defaultABI,
		key:     key,
		chainID: big.NewInt(cfg.ChainID),
		timeout: timeout,
		breaker: circuit.New("ledger"),
		retry:   retry.NoRetry{},
		tracer:  otel.Tracer("warranty/ledger"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.contract = bind.NewBoundContract(c.address, c.abi, backend, backend, backend)
	return c, nil
}

// Address returns the contract address.
func (c *Client) Address() common.Address {
	return c.address
}

// Sender returns the account that signs submissions.
func (c *Client) Sender() common.Address {
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("ledger.contract", c.address.Hex()))
	return c.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Submit sends issueWarranty and waits for inclusion. It is never retried: a
// timeout after broadcast returns an Error carrying the transaction hash.
func (c *Client) Submit(ctx context.Context, params IssuanceParams) (outcome *IssuanceOutcome, err error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "submit", attribute.String("warranty.serial_number", params.SerialNumber))
	defer func() {
		c.metrics.observeCall("submit", start, err)
		endSpan(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, &Error{Category: CategoryInvalidParams, Op: "submit", Message: "build transactor", Underlying: err}
	}
	opts.Context = ctx

	tx, err := c.contract.Transact(opts, "issueWarranty",
		params.Customer,
		params.ProductName,
		params.ProductModel,
		params.SerialNumber,
		new(big.Int).SetUint64(params.WarrantyPeriodDays),
		params.Manufacturer,
		params.Retailer,
		params.MetadataURI,
	)
	if err != nil {
		return nil, classify("submit", err, nil)
	}
	txHash := tx.Hash()
	span.SetAttributes(attribute.String("ledger.tx_hash", txHash.Hex()))
	c.logger.InfoContext(ctx, "issuance transaction broadcast",
		"tx_hash", txHash.Hex(),
		"serial_number", params.SerialNumber,
	)

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, classify("wait_mined", err, &txHash)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &Error{
			Category:        CategoryRejected,
			Op:              "submit",
			TransactionHash: &txHash,
			Message:         "transaction reverted",
		}
	}

	events := make([]EventRecord, 0, len(receipt.Logs))
	for _, l := range receipt.Logs {
		events = append(events, eventFromLog(l))
	}
	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	return &IssuanceOutcome{
		Success:         true,
		TransactionHash: receipt.TxHash,
		GasUsed:         receipt.GasUsed,
		BlockNumber:     block,
		Events:          events,
	}, nil
}

// guardRead runs a read-only operation behind the breaker and the timeout.
func (c *Client) guardRead(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.breaker != nil && !c.breaker.Allow() {
		return &Error{Category: CategoryUnavailable, Op: op, Message: "fail fast", Underlying: ErrBreakerOpen}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil {
		lerr := classify(op, err, nil)
		if lerr.Transient() {
			c.recordFailure(ctx, op, lerr)
		}
		return lerr
	}
	c.recordSuccess(ctx)
	return nil
}

func (c *Client) recordFailure(ctx context.Context, op string, err error) {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.breakerTransition("open")
		c.logger.WarnContext(ctx, "ledger read breaker opened",
			"op", op,
			"error", err,
		)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.breakerTransition("closed")
		c.logger.InfoContext(ctx, "ledger read breaker closed")
	}
}

// QueryEvents replays eventName logs between fromBlock and toBlock inclusive.
// A nil fromBlock means genesis and a nil toBlock means latest. Results are
// ordered by block then log index.
func (c *Client) QueryEvents(ctx context.Context, eventName string, fromBlock, toBlock *uint64) (events []EventRecord, err error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "query_events", attribute.String("ledger.event", eventName))
	defer func() {
		c.metrics.observeCall("query_events", start, err)
		endSpan(span, err)
	}()

	ev, ok := c.abi.Events[eventName]
	if !ok {
		return nil, &Error{Category: CategoryInvalidParams, Op: "query_events", Message: "unknown event " + eventName}
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{ev.ID}},
	}
	if fromBlock != nil {
		query.FromBlock = new(big.Int).SetUint64(*fromBlock)
	}
	if toBlock != nil {
		query.ToBlock = new(big.Int).SetUint64(*toBlock)
	}

	err = c.retry.Execute(ctx, func(ctx context.Context) error {
		return c.guardRead(ctx, "query_events", func(ctx context.Context) error {
			logs, ferr := c.backend.FilterLogs(ctx, query)
			if ferr != nil {
				return ferr
			}
			events = events[:0]
			for i := range logs {
				if logs[i].Removed {
					continue
				}
				events = append(events, eventFromLog(&logs[i]))
			}
			return nil
		})
	})
	if err != nil {
		return nil, classify("query_events", err, nil)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].Index < events[j].Index
	})
	span.SetAttributes(attribute.Int("ledger.events", len(events)))
	return events, nil
}

// DecodeEvent decodes rec against the client's contract ABI.
func (c *Client) DecodeEvent(rec EventRecord) (*DecodedEvent, error) {
	return DecodeEvent(c.abi, rec)
}

// Call runs a read-only contract method and returns its unpacked outputs.
func (c *Client) Call(ctx context.Context, method string, args ...any) (out []any, err error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "call", attribute.String("ledger.method", method))
	defer func() {
		c.metrics.observeCall("call."+method, start, err)
		endSpan(span, err)
	}()

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, &Error{Category: CategoryInvalidParams, Op: "call", Message: "pack " + method, Underlying: err}
	}

	err = c.guardRead(ctx, "call", func(ctx context.Context) error {
		raw, cerr := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
		if cerr != nil {
			return cerr
		}
		out, cerr = c.abi.Unpack(method, raw)
		if cerr != nil {
			return &Error{Category: CategoryBadData, Op: "call", Message: "unpack " + method, Underlying: cerr}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsWarrantyValid asks the contract whether tokenID is currently valid.
func (c *Client) IsWarrantyValid(ctx context.Context, tokenID TokenID) (bool, error) {
	out, err := c.Call(ctx, "isWarrantyValid", tokenID.BigInt())
	if err != nil {
		return false, err
	}
	valid, ok := first[bool](out)
	if !ok {
		return false, badData("isWarrantyValid")
	}
	return valid, nil
}

// WarrantyDetails reads the live contract view of tokenID.
func (c *Client) WarrantyDetails(ctx context.Context, tokenID TokenID) (*WarrantyView, error) {
	out, err := c.Call(ctx, "getWarrantyDetails", tokenID.BigInt())
	if err != nil {
		return nil, err
	}
	if len(out) != 8 {
		return nil, badData("getWarrantyDetails")
	}

	view := &WarrantyView{}
	var purchase, expiry *big.Int
	var ok [8]bool
	view.ProductName, ok[0] = out[0].(string)
	view.ProductModel, ok[1] = out[1].(string)
	view.SerialNumber, ok[2] = out[2].(string)
	purchase, ok[3] = out[3].(*big.Int)
	expiry, ok[4] = out[4].(*big.Int)
	view.Manufacturer, ok[5] = out[5].(common.Address)
	view.Retailer, ok[6] = out[6].(common.Address)
	view.IsValid, ok[7] = out[7].(bool)
	for _, b := range ok {
		if !b {
			return nil, badData("getWarrantyDetails")
		}
	}
	view.PurchaseDate = unixTime(purchase)
	view.ExpiryDate = unixTime(expiry)
	return view, nil
}

// ContractInfo reads name and symbol and checks that code is deployed.
func (c *Client) ContractInfo(ctx context.Context) (*ContractInfo, error) {
	info := &ContractInfo{Address: c.address}

	err := c.guardRead(ctx, "code_at", func(ctx context.Context) error {
		code, cerr := c.backend.CodeAt(ctx, c.address, nil)
		if cerr != nil {
			return cerr
		}
		info.Deployed = len(code) > 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !info.Deployed {
		return info, nil
	}

	out, err := c.Call(ctx, "name")
	if err != nil {
		return nil, err
	}
	info.Name, _ = first[string](out)

	out, err = c.Call(ctx, "symbol")
	if err != nil {
		return nil, err
	}
	info.Symbol, _ = first[string](out)
	return info, nil
}

func first[T any](out []any) (T, bool) {
	var zero T
	if len(out) == 0 {
		return zero, false
	}
	v, ok := out[0].(T)
	return v, ok
}

func badData(method string) *Error {
	return &Error{Category: CategoryBadData, Op: "call", Message: "unexpected outputs from " + method}
}
