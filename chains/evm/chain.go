package evm

import (
	"context"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/signer"
)

// Chain is a client of the XRPL EVM sidechain.
type Chain struct {
	config      ChainConfig
	itsGasLimit uint64

	client  *ethclient.Client
	chainID *big.Int

	gatewayAddress common.Address
	gateway        *bind.BoundContract
	its            *bind.BoundContract

	signer signer.Signer
	from   common.Address
	// txMu serializes nonce assignment across concurrent relay runs.
	txMu sync.Mutex
}

var (
	_ core.EVMDestination = (*Chain)(nil)
	_ LogSource           = (*Chain)(nil)
)

// NewChain dials the sidechain RPC. s may be nil for a read-only client.
func NewChain(ctx context.Context, config ChainConfig, itsGasLimit uint64, s signer.Signer) (*Chain, error) {
	client, err := ethclient.DialContext(ctx, config.RPC.HTTP)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", config.RPC.HTTP)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain id")
	}
	if itsGasLimit == 0 {
		itsGasLimit = DefaultITSGasLimit
	}

	gatewayAddress := common.HexToAddress(config.NativeGatewayAddress)
	c := &Chain{
		config:         config,
		itsGasLimit:    itsGasLimit,
		client:         client,
		chainID:        chainID,
		gatewayAddress: gatewayAddress,
		gateway:        bind.NewBoundContract(gatewayAddress, gatewayABI, client, client, client),
		its:            bind.NewBoundContract(common.HexToAddress(config.NativeITSAddress), itsABI, client, client, client),
		signer:         s,
	}
	if s != nil {
		pub, err := s.GetPublicKey(ctx)
		if err != nil {
			return nil, err
		}
		pk, err := crypto.UnmarshalPubkey(pub)
		if err != nil {
			return nil, errors.Wrap(err, "invalid signer public key")
		}
		c.from = crypto.PubkeyToAddress(*pk)
	}
	return c, nil
}

// ChainID returns the chain name used on the hub.
func (c *Chain) ChainID() string {
	return c.config.ChainID
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

// Address returns the address of the relaying wallet.
func (c *Chain) Address() common.Address {
	return c.from
}

func (c *Chain) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// FilterContractCalls returns the ContractCall logs of the gateway in [from, to].
func (c *Chain) FilterContractCalls(ctx context.Context, from, to uint64) ([]*ContractCallEvent, error) {
	logs, err := c.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{c.gatewayAddress},
		Topics:    [][]common.Hash{{contractCallTopic}},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to filter logs in [%d, %d]", from, to)
	}

	logger := GetChainLogger(c.config.ChainID)
	events := make([]*ContractCallEvent, 0, len(logs))
	for _, l := range logs {
		ev := new(ContractCallEvent)
		if err := c.gateway.UnpackLog(ev, eventContractCall, l); err != nil {
			logger.Warn("failed to unpack ContractCall log", "tx_hash", l.TxHash.Hex(), "log_index", l.Index, "error", err)
			continue
		}
		ev.Raw = l
		events = append(events, ev)
	}
	return events, nil
}

// SendExecuteData sends the prover's execute data to the gateway as calldata.
func (c *Chain) SendExecuteData(ctx context.Context, executeData []byte) (string, error) {
	tx, err := c.transact(ctx, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.gateway.RawTransact(opts, executeData)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to send execute data")
	}
	return c.waitMined(ctx, tx)
}

// ExecuteITS calls `execute` on the interchain token service.
func (c *Chain) ExecuteITS(ctx context.Context, exec core.ITSExecution) (string, error) {
	tx, err := c.transact(ctx, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		opts.GasLimit = c.itsGasLimit
		return c.its.Transact(opts, methodExecute, exec.CommandID, exec.SourceChain, exec.SourceAddress, exec.Payload)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to call ITS execute")
	}
	return c.waitMined(ctx, tx)
}

func (c *Chain) transact(ctx context.Context, send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Transaction, error) {
	if c.signer == nil {
		return nil, errors.New("no signer is configured for the EVM sidechain")
	}
	c.txMu.Lock()
	defer c.txMu.Unlock()
	return send(c.transactOpts(ctx))
}

func (c *Chain) transactOpts(ctx context.Context) *bind.TransactOpts {
	txSigner := types.LatestSignerForChainID(c.chainID)
	return &bind.TransactOpts{
		From:    c.from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != c.from {
				return nil, bind.ErrNotAuthorized
			}
			sig, err := c.signer.Sign(ctx, txSigner.Hash(tx).Bytes())
			if err != nil {
				return nil, err
			}
			return tx.WithSignature(txSigner, sig)
		},
	}
}

func (c *Chain) waitMined(ctx context.Context, tx *types.Transaction) (string, error) {
	logger := GetChainLogger(c.config.ChainID)
	logger.InfoContext(ctx, "transaction sent", "tx_hash", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return "", errors.Wrapf(err, "failed to wait for tx %s", tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", errors.Newf("tx %s reverted in block %v", tx.Hash().Hex(), receipt.BlockNumber)
	}
	logger.InfoContext(ctx, "transaction mined", "tx_hash", tx.Hash().Hex(), "block_number", receipt.BlockNumber, "gas_used", receipt.GasUsed)
	return tx.Hash().Hex(), nil
}

func GetChainLogger(chainID string) *log.RelayLogger {
	return log.GetLogger().
		WithChain(chainID).
		WithModule("evm.chain")
}
