package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Routes names the chains and hub contracts a relay run talks to.
type Routes struct {
	HubChain   string
	HubGateway string
	HubITS     string

	EVMChain      string
	EVMHubGateway string
	EVMProver     string

	XRPLChain          string
	XRPLHubGateway     string
	XRPLProver         string
	XRPLGatewayAccount string
}

type RelayConfig struct {
	Routes   Routes
	Identity XRPLIdentity
	// TokenIDs maps a lowercase token symbol to its ITS token id.
	TokenIDs map[string]string
	// Poll bounds stages 1 to 6.
	Poll PollConfig
	// PostSubmitPoll bounds the confirmations after an XRPL submission.
	PostSubmitPoll PollConfig
}

// Stage is a step of a relay run.
type Stage int

const (
	StageDetected Stage = iota
	StageVerify
	StageRoute
	StageExecute
	StageUnfurl
	StageRouteToDestination
	StageConstructProof
	StageGetProof
	StageSubmit
	StagePostSubmit
)

func (s Stage) String() string {
	switch s {
	case StageDetected:
		return "detected"
	case StageVerify:
		return "verify"
	case StageRoute:
		return "route"
	case StageExecute:
		return "execute"
	case StageUnfurl:
		return "unfurl"
	case StageRouteToDestination:
		return "route_to_destination"
	case StageConstructProof:
		return "construct_proof"
	case StageGetProof:
		return "get_proof"
	case StageSubmit:
		return "submit"
	case StagePostSubmit:
		return "post_submit"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// RelayRun accumulates the state of one message as its stages complete.
type RelayRun struct {
	RunID             string
	MessageID         string
	Origin            Origin
	SourceChain       string
	DestinationChain  string
	PayloadHash       string
	PayloadHex        string
	LoggedEvent       *LoggedEvent
	Unfurled          *UnfurledEvent
	MultisigSessionID string
	Proof             Proof
	DestinationTxHash string
	Stage             Stage
	StartedAt         time.Time
}

// Relayer drives one message at a time through the hub and onto its destination.
type Relayer struct {
	hub    HubClient
	evm    EVMDestination
	xrpl   XRPLDestination
	config RelayConfig
}

func NewRelayer(hub HubClient, evm EVMDestination, xrpl XRPLDestination, config RelayConfig) *Relayer {
	return &Relayer{
		hub:    hub,
		evm:    evm,
		xrpl:   xrpl,
		config: config,
	}
}

// MessageID returns the hub message id of msg.
func (r *Relayer) MessageID(msg *CrossChainMessage) string {
	if msg.Origin == OriginXRPL {
		return r.config.Identity.MessageID(msg.TxHash)
	}
	var idx uint
	if msg.EventIndex != nil {
		idx = *msg.EventIndex
	}
	return EVMMessageID(msg.TxHash, idx)
}

// Relay runs every stage for msg in order. It returns the run state reached, even on failure.
func (r *Relayer) Relay(ctx context.Context, msg *CrossChainMessage) (*RelayRun, error) {
	run := &RelayRun{
		RunID:            uuid.NewString(),
		MessageID:        r.MessageID(msg),
		Origin:           msg.Origin,
		SourceChain:      msg.SourceChainID,
		DestinationChain: msg.DestinationChainID,
		PayloadHash:      msg.PayloadHash,
		PayloadHex:       hex.EncodeToString(msg.Payload),
		Stage:            StageDetected,
		StartedAt:        time.Now(),
	}

	ctx, span := tracer.Start(ctx, "Relayer.Relay", WithRunAttributes(run))
	defer span.End()

	var err error
	switch msg.Origin {
	case OriginEVM:
		err = r.relayFromEVM(ctx, run, msg)
	case OriginXRPL:
		err = r.relayFromXRPL(ctx, run, msg)
	default:
		err = errors.Newf("unknown message origin %q", msg.Origin)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return run, err
}

func (r *Relayer) relayFromEVM(ctx context.Context, run *RelayRun, msg *CrossChainMessage) error {
	routes := r.config.Routes
	gm := GatewayMessage{
		CCID:               CCID{SourceChain: msg.SourceChainID, MessageID: run.MessageID},
		SourceAddress:      msg.SourceAddress,
		DestinationChain:   msg.DestinationChainID,
		DestinationAddress: msg.DestinationAddress,
		PayloadHash:        utils.Remove0x(msg.PayloadHash),
	}

	if err := r.runStage(ctx, run, StageVerify, func(ctx context.Context) error {
		action, err := verifyMessagesAction(gm)
		if err != nil {
			return err
		}
		_, err = pollExecute(ctx, r, run, routes.EVMHubGateway, action, ClassifyVerification)
		return err
	}); err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageRoute, func(ctx context.Context) error {
		action, err := routeMessagesAction(gm)
		if err != nil {
			return err
		}
		_, err = pollExecute(ctx, r, run, routes.EVMHubGateway, action, ClassifyCommitted)
		return err
	}); err != nil {
		return err
	}

	if err := r.execute(ctx, run, gm.CCID, run.PayloadHex); err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageConstructProof, func(ctx context.Context) error {
		action, err := constructXRPLProofAction(
			CCID{SourceChain: routes.HubChain, MessageID: run.Unfurled.MessageID},
			run.Unfurled.Payload,
		)
		if err != nil {
			return err
		}
		return r.constructProof(ctx, run, routes.XRPLProver, action)
	}); err != nil {
		return err
	}

	return r.deliver(ctx, run, routes.XRPLProver)
}

func (r *Relayer) relayFromXRPL(ctx context.Context, run *RelayRun, msg *CrossChainMessage) error {
	routes := r.config.Routes
	if msg.Amount == nil {
		return errors.Wrap(ErrMalformedSourceTx, "XRPL message has no amount")
	}
	um, err := r.xrplUserMessage(msg)
	if err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageVerify, func(ctx context.Context) error {
		action, err := verifyXRPLUserMessageAction(um)
		if err != nil {
			return err
		}
		_, err = pollExecute(ctx, r, run, routes.XRPLHubGateway, action, ClassifyVerification)
		return err
	}); err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageRoute, func(ctx context.Context) error {
		action, err := routeXRPLIncomingMessageAction(um, msg.Payload)
		if err != nil {
			return err
		}
		_, err = pollExecute(ctx, r, run, routes.XRPLHubGateway, action, ClassifyCommitted)
		return err
	}); err != nil {
		return err
	}

	hubMessage, err := r.hubMessage(msg, um)
	if err != nil {
		return err
	}
	ccID := CCID{SourceChain: routes.XRPLChain, MessageID: run.MessageID}
	if err := r.execute(ctx, run, ccID, hex.EncodeToString(hubMessage)); err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageRouteToDestination, func(ctx context.Context) error {
		ev := run.Unfurled
		action, err := routeMessagesAction(GatewayMessage{
			CCID:               CCID{SourceChain: ev.SourceChain, MessageID: ev.MessageID},
			SourceAddress:      ev.SourceAddress,
			DestinationChain:   ev.DestinationChain,
			DestinationAddress: ev.DestinationAddress,
			PayloadHash:        ev.PayloadHash,
		})
		if err != nil {
			return err
		}
		_, err = pollExecute(ctx, r, run, routes.HubGateway, action, ClassifyCommitted)
		return err
	}); err != nil {
		return err
	}

	if err := r.runStage(ctx, run, StageConstructProof, func(ctx context.Context) error {
		action, err := constructEVMProofAction(CCID{SourceChain: routes.HubChain, MessageID: run.Unfurled.MessageID})
		if err != nil {
			return err
		}
		return r.constructProof(ctx, run, routes.EVMProver, action)
	}); err != nil {
		return err
	}

	return r.deliver(ctx, run, routes.EVMProver)
}

func (r *Relayer) xrplUserMessage(msg *CrossChainMessage) (*XRPLUserMessage, error) {
	txID, err := r.config.Identity.TxID(msg.TxHash)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedSourceTx, err.Error())
	}
	accountID, err := utils.DecodeXRPLAccountID(msg.SourceAddress)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedSourceTx, err.Error())
	}
	return &XRPLUserMessage{
		TxID:               txID,
		SourceAddress:      utils.ByteArray(accountID),
		DestinationChain:   msg.DestinationChainID,
		DestinationAddress: msg.DestinationAddress,
		PayloadHash:        msg.PayloadHash,
		Amount:             msg.Amount,
	}, nil
}

func (r *Relayer) hubMessage(msg *CrossChainMessage, um *XRPLUserMessage) ([]byte, error) {
	symbol := msg.Amount.TokenSymbol()
	tokenID, ok := r.config.TokenIDs[symbol]
	if !ok {
		return nil, errors.Newf("no token id is configured for %q", symbol)
	}
	amount, err := msg.Amount.Scaled()
	if err != nil {
		return nil, err
	}
	destination, err := utils.DecodeHex(msg.DestinationAddress)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedSourceTx, err.Error())
	}
	source := make([]byte, len(um.SourceAddress))
	for i, b := range um.SourceAddress {
		source[i] = byte(b)
	}
	return EncodeHubMessage(msg.DestinationChainID, InterchainTransfer{
		TokenID:            common.HexToHash(tokenID),
		SourceAddress:      source,
		DestinationAddress: destination,
		Amount:             amount,
		Data:               msg.Payload,
	})
}

// execute runs stage 3 and unfurls the resulting contract_called event.
func (r *Relayer) execute(ctx context.Context, run *RelayRun, ccID CCID, payloadHex string) error {
	if err := r.runStage(ctx, run, StageExecute, func(ctx context.Context) error {
		action, err := executeAction(ccID, payloadHex)
		if err != nil {
			return err
		}
		ev, err := pollExecute(ctx, r, run, r.config.Routes.HubGateway, action, ClassifyEvent(EventTypeContractCalled))
		if err != nil {
			return err
		}
		run.LoggedEvent = &ev
		return nil
	}); err != nil {
		return err
	}

	return r.runStage(ctx, run, StageUnfurl, func(ctx context.Context) error {
		ev, err := Unfurl(*run.LoggedEvent)
		if err != nil {
			return err
		}
		run.Unfurled = ev
		return nil
	})
}

func (r *Relayer) constructProof(ctx context.Context, run *RelayRun, prover string, action []byte) error {
	ev, err := pollExecute(ctx, r, run, prover, action, ClassifyEvent(EventTypeProofUnderConstruction))
	if err != nil {
		return err
	}
	id, ok := ev.UnquotedAttribute(AttributeKeyMultisigSessionID)
	if !ok || id == "" {
		return &MissingAttributeError{Field: AttributeKeyMultisigSessionID}
	}
	run.MultisigSessionID = id
	return nil
}

// deliver runs stages 6 to 8: fetch the proof and submit it on the ledger its shape belongs to.
func (r *Relayer) deliver(ctx context.Context, run *RelayRun, prover string) error {
	if err := r.runStage(ctx, run, StageGetProof, func(ctx context.Context) error {
		query, err := ProofQuery(run.MultisigSessionID)
		if err != nil {
			return err
		}
		proof, err := PollUntil(ctx, GetRunLogger(run), r.config.Poll, StageGetProof.String(),
			func(ctx context.Context) (RawOutput, error) {
				return r.hub.QueryState(ctx, prover, query)
			},
			ClassifyProof,
		)
		if err != nil {
			return err
		}
		run.Proof = proof
		return nil
	}); err != nil {
		return err
	}

	switch proof := run.Proof.(type) {
	case *XRPLProof:
		var result *XRPLSubmitResult
		if err := r.runStage(ctx, run, StageSubmit, func(ctx context.Context) error {
			var err error
			result, err = r.submitToXRPL(ctx, run, proof)
			return err
		}); err != nil {
			return err
		}
		return r.runStage(ctx, run, StagePostSubmit, func(ctx context.Context) error {
			return r.confirmXRPLSubmission(ctx, run, result)
		})
	case *EVMProof:
		return r.runStage(ctx, run, StageSubmit, func(ctx context.Context) error {
			return r.submitToEVM(ctx, run, proof)
		})
	default:
		return errors.Newf("unsupported proof type %T", run.Proof)
	}
}

func (r *Relayer) submitToXRPL(ctx context.Context, run *RelayRun, proof *XRPLProof) (*XRPLSubmitResult, error) {
	if r.xrpl == nil {
		return nil, errors.New("XRPL destination is not configured")
	}
	result, err := r.xrpl.SubmitTxBlob(ctx, proof.TxBlob)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit XRPL transaction")
	}
	if !result.Accepted {
		return nil, NewRejectedError("xrpl submit", result.EngineResult)
	}
	run.DestinationTxHash = result.TxHash
	return result, nil
}

// confirmXRPLSubmission reports the submitted transaction back to the hub.
// Running out of the post-submit budget is logged and ends the run without an error.
func (r *Relayer) confirmXRPLSubmission(ctx context.Context, run *RelayRun, result *XRPLSubmitResult) error {
	logger := GetRunLogger(run)
	routes := r.config.Routes
	cfg := r.config.PostSubmitPoll

	verify, err := verifyProverMessageAction(result.TxHash)
	if err != nil {
		return err
	}
	if _, err := pollExecuteWith(ctx, r, run, cfg, routes.XRPLHubGateway, verify, ClassifyVerification); err != nil {
		if errors.Is(err, ErrPollBudgetExhausted) {
			logger.WarnContext(ctx, "prover message is still unverified, giving up", "tx_hash", result.TxHash, "error", err)
			return nil
		}
		return err
	}

	confirm, err := confirmTxStatusAction(run.MultisigSessionID, result.TxHash, result.SignerPublicKeys)
	if err != nil {
		return err
	}
	if _, err := pollExecuteWith(ctx, r, run, cfg, routes.XRPLProver, confirm, ClassifyCommitted); err != nil {
		if errors.Is(err, ErrPollBudgetExhausted) {
			logger.WarnContext(ctx, "transaction status is still unconfirmed, giving up", "tx_hash", result.TxHash, "error", err)
			return nil
		}
		return err
	}
	return nil
}

func (r *Relayer) submitToEVM(ctx context.Context, run *RelayRun, proof *EVMProof) error {
	if r.evm == nil {
		return errors.New("EVM destination is not configured")
	}
	executeData, err := utils.DecodeHex(proof.ExecuteData)
	if err != nil {
		return err
	}
	if _, err := r.evm.SendExecuteData(ctx, executeData); err != nil {
		return errors.Wrap(err, "failed to send execute data")
	}

	ev := run.Unfurled
	payload, err := utils.DecodeHex(ev.Payload)
	if err != nil {
		return err
	}
	txHash, err := r.evm.ExecuteITS(ctx, ITSExecution{
		CommandID:     ITSCommandID(ev.SourceChain, ev.MessageID),
		SourceChain:   r.config.Routes.HubChain,
		SourceAddress: ev.SourceAddress,
		Payload:       payload,
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute ITS message")
	}
	run.DestinationTxHash = txHash
	return nil
}

func (r *Relayer) runStage(ctx context.Context, run *RelayRun, stage Stage, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "Relayer."+stage.String(), trace.WithAttributes(AttributeKeyStage.String(stage.String())))
	defer span.End()
	logger := GetRunLogger(run)

	logger.DebugContext(ctx, "stage started", "stage", stage.String())
	if err := fn(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrapf(err, "stage %s", stage)
	}
	run.Stage = stage
	logger.InfoContext(ctx, "stage completed", "stage", stage.String())
	return nil
}

func pollExecute[T any](ctx context.Context, r *Relayer, run *RelayRun, contract string, action []byte, classify Classifier[T]) (T, error) {
	return pollExecuteWith(ctx, r, run, r.config.Poll, contract, action, classify)
}

func pollExecuteWith[T any](ctx context.Context, r *Relayer, run *RelayRun, cfg PollConfig, contract string, action []byte, classify Classifier[T]) (T, error) {
	return PollUntil(ctx, GetRunLogger(run), cfg, fmt.Sprintf("execute %s", contract),
		func(ctx context.Context) (RawOutput, error) {
			return r.hub.ExecuteTx(ctx, contract, action)
		},
		classify,
	)
}

func GetRunLogger(run *RelayRun) *log.RelayLogger {
	return log.GetLogger().
		WithChainPair(run.SourceChain, run.DestinationChain).
		WithMessage(run.MessageID).
		WithModule("core.relayer")
}
