package axelar

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	sdkerrors "cosmossdk.io/errors"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	rpcclient "github.com/cometbft/cometbft/rpc/client"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	libclient "github.com/cometbft/cometbft/rpc/jsonrpc/client"
	sdkCtx "github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
)

// Chain signs and broadcasts hub transactions in process.
type Chain struct {
	config   ChainConfig
	encoding EncodingConfig

	Keybase keyring.Keyring
	Client  rpcclient.Client

	grpcConn *grpc.ClientConn

	// txMu keeps the account sequence consistent: a transaction is committed
	// before the next one is signed.
	txMu sync.Mutex
}

var _ core.HubClient = (*Chain)(nil)

// NewChain opens the keyring under homePath and prepares the RPC and gRPC clients.
// No connection is made until the first request.
func NewChain(config ChainConfig, homePath string, timeout time.Duration) (*Chain, error) {
	encoding, err := MakeEncodingConfig(config.AccountPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the encoding config")
	}

	dir := config.KeyringDir
	if dir == "" {
		dir = keysDir(homePath, config.ChainID)
	}
	keybase, err := keyring.New(config.ChainID, config.KeyringBackend, dir, os.Stdin, encoding.Codec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open the keyring at %s", dir)
	}

	client, err := newRPCClient(config.RPCAddr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create RPC client for %s", config.RPCAddr)
	}

	c := &Chain{
		config:   config,
		encoding: encoding,
		Keybase:  keybase,
		Client:   client,
	}
	if config.GRPCAddr != "" {
		c.grpcConn, err = grpc.NewClient(
			config.GRPCAddr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.ForceCodec(encoding.Codec.GRPCCodec())),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create gRPC client for %s", config.GRPCAddr)
		}
	}
	return c, nil
}

func (c *Chain) ChainID() string {
	return c.config.ChainID
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

func (c *Chain) AverageBlockTime() time.Duration {
	return c.config.AverageBlockTime()
}

// GetAddress returns the sdk.AccAddress associated with the configured key
func (c *Chain) GetAddress() (sdk.AccAddress, error) {
	record, err := c.Keybase.Key(c.config.Key)
	if err != nil {
		return nil, err
	}
	return record.GetAddress()
}

// ExecuteTx signs MsgExecuteContract with the configured key, broadcasts it
// and waits for the commit. A transaction rejected by CheckTx is returned with
// its code so that the caller can classify it.
func (c *Chain) ExecuteTx(ctx context.Context, contract string, action []byte) (core.RawOutput, error) {
	logger := GetChainLogger(c.config.ChainID)

	c.txMu.Lock()
	defer c.txMu.Unlock()

	from, err := c.GetAddress()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get the address of key %s", c.config.Key)
	}
	sender, err := c.encoding.InterfaceRegistry.SigningContext().AddressCodec().BytesToString(from)
	if err != nil {
		return nil, err
	}
	msg := &wasmtypes.MsgExecuteContract{
		Sender:   sender,
		Contract: contract,
		Msg:      wasmtypes.RawContractMessage(action),
	}

	res, err := c.rawSendMsgs(ctx, from, msg)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		logger.InfoContext(ctx, "CheckTx failed", "contract", contract, "tx_hash", res.TxHash, "error", sdkerrors.ABCIError(res.Codespace, res.Code, res.RawLog))
		return newTxOutput(res.TxHash, res.Code, res.RawLog, nil)
	}

	resTx, err := c.waitForCommit(ctx, res.TxHash)
	if err != nil {
		return nil, err
	}
	if resTx.TxResult.IsErr() {
		logger.InfoContext(ctx, "DeliverTx failed", "contract", contract, "tx_hash", res.TxHash, "error", sdkerrors.ABCIError(resTx.TxResult.Codespace, resTx.TxResult.Code, resTx.TxResult.Log))
	} else {
		logger.DebugContext(ctx, "transaction committed", "contract", contract, "tx_hash", res.TxHash, "height", resTx.Height)
	}
	return newTxOutput(res.TxHash, resTx.TxResult.Code, resTx.TxResult.Log, resTx.TxResult.Events)
}

func (c *Chain) rawSendMsgs(ctx context.Context, from sdk.AccAddress, msgs ...sdk.Msg) (*sdk.TxResponse, error) {
	clientCtx := c.CLIContext(from).WithCmdContext(ctx)

	// Query account details
	txf, err := c.prepareFactory(clientCtx, c.TxFactory())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query account")
	}

	if c.config.Gas == 0 {
		_, adjusted, err := tx.CalculateGas(clientCtx, txf, msgs...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to simulate transaction")
		}
		txf = txf.WithGas(adjusted)
	} else {
		txf = txf.WithGas(c.config.Gas)
	}

	txb, err := txf.BuildUnsignedTx(msgs...)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(ctx, txf, c.config.Key, txb, true); err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	txBytes, err := clientCtx.TxConfig.TxEncoder()(txb.GetTx())
	if err != nil {
		return nil, err
	}

	res, err := clientCtx.BroadcastTx(txBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to broadcast transaction")
	}
	return res, nil
}

func (c *Chain) waitForCommit(ctx context.Context, txHash string) (*coretypes.ResultTx, error) {
	var resTx *coretypes.ResultTx

	if err := retry.Do(func() error {
		var err error
		var recoverable bool
		resTx, recoverable, err = c.rawQueryTx(ctx, txHash)
		if err != nil && !recoverable {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.config.MaxRetryForCommit)),
		retry.Delay(c.AverageBlockTime()),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, errors.Wrapf(err, "failed to make sure that tx %s is committed", txHash)
	}
	return resTx, nil
}

// rawQueryTx returns a tx of which hash equals to `hexTxHash`.
func (c *Chain) rawQueryTx(ctx context.Context, hexTxHash string) (*coretypes.ResultTx, bool, error) {
	txHash, err := hex.DecodeString(hexTxHash)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to decode the hex string of tx hash")
	}

	resTx, err := c.Client.Tx(ctx, txHash, false)
	if err != nil {
		recoverable := !strings.Contains(err.Error(), "transaction indexing is disabled")
		return nil, recoverable, errors.Wrap(err, "failed to retrieve tx")
	}
	return resTx, false, nil
}

// QueryState runs a smart query against the contract and returns `{"data": <response>}`.
func (c *Chain) QueryState(ctx context.Context, contract string, query []byte) (core.RawOutput, error) {
	res, err := wasmtypes.NewQueryClient(c.QueryContext()).SmartContractState(ctx, &wasmtypes.QuerySmartContractStateRequest{
		Address:   contract,
		QueryData: wasmtypes.RawContractMessage(query),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query contract %s", contract)
	}
	return json.Marshal(struct {
		Data json.RawMessage `json:"data"`
	}{json.RawMessage(res.Data)})
}

func (c *Chain) Close() error {
	if c.grpcConn != nil {
		return c.grpcConn.Close()
	}
	return nil
}

func (c *Chain) prepareFactory(clientCtx sdkCtx.Context, txf tx.Factory) (tx.Factory, error) {
	defer UseSDKContext(c.config.AccountPrefix)()

	from := clientCtx.GetFromAddress()
	if err := txf.AccountRetriever().EnsureExists(clientCtx, from); err != nil {
		return txf, err
	}
	num, seq, err := txf.AccountRetriever().GetAccountNumberSequence(clientCtx, from)
	if err != nil {
		return txf, err
	}
	return txf.WithAccountNumber(num).WithSequence(seq), nil
}

var sdkContextMutex sync.Mutex

// UseSDKContext uses a custom Bech32 account prefix and returns a restore func
// CONTRACT: When using this function, caller must ensure that lock contention
// doesn't cause program to hang.
func UseSDKContext(accountPrefix string) func() {
	sdkContextMutex.Lock()

	sdkConf := sdk.GetConfig()
	sdkConf.SetBech32PrefixForAccount(accountPrefix, accountPrefix+"pub")
	sdkConf.SetBech32PrefixForValidator(accountPrefix+"valoper", accountPrefix+"valoperpub")
	sdkConf.SetBech32PrefixForConsensusNode(accountPrefix+"valcons", accountPrefix+"valconspub")

	return sdkContextMutex.Unlock
}

// QueryContext returns a client.Context for queries. Queries go through gRPC when grpc_addr is set.
func (c *Chain) QueryContext() sdkCtx.Context {
	ctx := sdkCtx.Context{}.
		WithChainID(c.config.TmChainID).
		WithCodec(c.encoding.Codec).
		WithInterfaceRegistry(c.encoding.InterfaceRegistry).
		WithTxConfig(c.encoding.TxConfig).
		WithNodeURI(c.config.RPCAddr).
		WithClient(c.Client).
		WithAccountRetriever(authtypes.AccountRetriever{}).
		WithOutputFormat("json")
	if c.grpcConn != nil {
		ctx = ctx.WithGRPCClient(c.grpcConn)
	}
	return ctx
}

// CLIContext returns an instance of client.Context for sending transactions from `from`
func (c *Chain) CLIContext(from sdk.AccAddress) sdkCtx.Context {
	return c.QueryContext().
		WithInput(os.Stdin).
		WithBroadcastMode(flags.BroadcastSync).
		WithKeyring(c.Keybase).
		WithFrom(c.config.Key).
		WithFromName(c.config.Key).
		WithFromAddress(from).
		WithSkipConfirmation(true)
}

// TxFactory returns an instance of tx.Factory derived from the chain config
func (c *Chain) TxFactory() tx.Factory {
	return tx.Factory{}.
		WithAccountRetriever(authtypes.AccountRetriever{}).
		WithChainID(c.config.TmChainID).
		WithTxConfig(c.encoding.TxConfig).
		WithGasAdjustment(c.config.GasAdjustment).
		WithGasPrices(c.config.GasPrices).
		WithKeybase(c.Keybase).
		WithSignMode(signing.SignMode_SIGN_MODE_DIRECT)
}

// newTxOutput puts every event of a transaction into a single message log.
func newTxOutput(txHash string, code uint32, rawLog string, events []abci.Event) (core.RawOutput, error) {
	out := core.TxOutput{
		TxHash: txHash,
		Code:   &code,
		RawLog: rawLog,
		Logs:   []core.TxLog{{MsgIndex: 0, Events: make([]core.LoggedEvent, 0, len(events))}},
	}
	for _, ev := range events {
		logged := core.LoggedEvent{
			Type:       ev.Type,
			Attributes: make([]core.EventAttribute, 0, len(ev.Attributes)),
		}
		for _, attr := range ev.Attributes {
			logged.Attributes = append(logged.Attributes, core.EventAttribute{Key: attr.Key, Value: attr.Value})
		}
		out.Logs[0].Events = append(out.Logs[0].Events, logged)
	}
	return json.Marshal(out)
}

// keysDir returns the path to the keys for this chain
func keysDir(home, chainID string) string {
	return path.Join(home, "keys", chainID)
}

func newRPCClient(addr string, timeout time.Duration) (*rpchttp.HTTP, error) {
	httpClient, err := libclient.DefaultHTTPClient(addr)
	if err != nil {
		return nil, err
	}

	httpClient.Timeout = timeout
	rpcClient, err := rpchttp.NewWithClient(addr, "/websocket", httpClient)
	if err != nil {
		return nil, err
	}

	return rpcClient, nil
}

func GetChainLogger(chainID string) *log.RelayLogger {
	return log.GetLogger().
		WithChain(chainID).
		WithModule("axelar.chain")
}
