package dex

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"vaultScope/internal/model"
	"vaultScope/internal/pooltype"
)

// Decoder defines a log decoder.
type Decoder interface {
	CanDecode(topic0 string) bool
	Decode(log model.LogRecord) (*model.TypedEvent, error)
}

// Factory describes the pools a factory deploys.
type Factory struct {
	Kind    pooltype.Kind
	Version int
}

// ParseFactories reads "Kind" or "Kind@version" specs keyed by factory
// address.
func ParseFactories(specs map[string]string) (map[common.Address]Factory, error) {
	out := make(map[common.Address]Factory, len(specs))
	for addr, spec := range specs {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid factory address: %s", addr)
		}
		kindName, versionText, hasVersion := strings.Cut(spec, "@")
		kind, err := pooltype.Parse(kindName)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", addr, err)
		}
		f := Factory{Kind: kind, Version: 1}
		if hasVersion {
			v, err := strconv.Atoi(strings.TrimSpace(versionText))
			if err != nil || v < 1 {
				return nil, fmt.Errorf("factory %s: invalid version %q", addr, versionText)
			}
			f.Version = v
		}
		out[common.HexToAddress(addr)] = f
	}
	return out, nil
}

// DecoderConfig configures decoder behavior.
type DecoderConfig struct {
	// Vault restricts vault events to one emitter. Zero accepts any.
	Vault     common.Address
	Factories map[common.Address]Factory
}

type eventSource int

const (
	fromVault eventSource = iota
	fromPool
	fromFactory
)

type eventRef struct {
	source eventSource
	event  abi.Event
}

// VaultDecoder decodes vault, pool and factory events.
type VaultDecoder struct {
	cfg    DecoderConfig
	topics map[string]eventRef
}

// NewVaultDecoder builds a decoder for every supported event.
func NewVaultDecoder(cfg DecoderConfig) (*VaultDecoder, error) {
	vault, err := VaultABI()
	if err != nil {
		return nil, fmt.Errorf("parse vault abi: %w", err)
	}
	pool, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	factory, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}

	d := &VaultDecoder{cfg: cfg, topics: make(map[string]eventRef)}
	for _, name := range []string{model.EventSwap, model.EventPoolBalanceChanged, model.EventPoolBalanceManaged, model.EventInternalBalanceChanged} {
		d.register(fromVault, vault.Events[name])
	}
	for _, name := range []string{model.EventTransfer, model.EventSwapFeePercentageChanged, model.EventAmpUpdateStarted, model.EventAmpUpdateStopped} {
		d.register(fromPool, pool.Events[name])
	}
	d.register(fromFactory, factory.Events[model.EventPoolCreated])
	return d, nil
}

func (d *VaultDecoder) register(source eventSource, event abi.Event) {
	d.topics[strings.ToLower(event.ID.Hex())] = eventRef{source: source, event: event}
}

// Topic0s lists the signatures the decoder understands.
func (d *VaultDecoder) Topic0s() []common.Hash {
	out := make([]common.Hash, 0, len(d.topics))
	for _, ref := range d.topics {
		out = append(out, ref.event.ID)
	}
	return out
}

// DefaultTopic0s returns the signatures of every supported event.
func DefaultTopic0s() ([]common.Hash, error) {
	d, err := NewVaultDecoder(DecoderConfig{})
	if err != nil {
		return nil, err
	}
	return d.Topic0s(), nil
}

// CanDecode checks if the topic0 is supported.
func (d *VaultDecoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topics[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *VaultDecoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	ref, ok := d.topics[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid emitter address: %s", log.Address)
	}
	emitter := common.HexToAddress(log.Address)

	if ref.source == fromVault && d.cfg.Vault != (common.Address{}) && emitter != d.cfg.Vault {
		return nil, fmt.Errorf("%s emitted by %s, not the vault", ref.event.Name, emitter.Hex())
	}

	topics, err := parseIndexedTopics(ref.event, log.Topics)
	if err != nil {
		return nil, err
	}
	values, err := unpackNonIndexed(ref.event, log.Data)
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	switch ref.event.Name {
	case model.EventSwap:
		decoded, err = decodeSwap(ref.event, topics, values)
	case model.EventPoolBalanceChanged:
		decoded, err = decodePoolBalanceChanged(ref.event, topics, values)
	case model.EventPoolBalanceManaged:
		decoded, err = decodePoolBalanceManaged(ref.event, topics, values)
	case model.EventInternalBalanceChanged:
		decoded, err = decodeInternalBalanceChanged(ref.event, topics, values)
	case model.EventTransfer:
		decoded, err = decodeTransfer(ref.event, topics, values)
	case model.EventSwapFeePercentageChanged:
		decoded, err = decodeSwapFeeChanged(values)
	case model.EventAmpUpdateStarted:
		decoded, err = decodeAmpUpdateStarted(values)
	case model.EventAmpUpdateStopped:
		decoded, err = decodeAmpUpdateStopped(values)
	case model.EventPoolCreated:
		decoded, err = d.decodePoolCreated(ref.event, emitter, topics)
	default:
		err = fmt.Errorf("unsupported event name: %s", ref.event.Name)
	}
	if err != nil {
		return nil, err
	}
	return model.NewTypedEvent(log, ref.event.Name, decoded), nil
}

func decodeSwap(event abi.Event, topics []common.Hash, values []interface{}) (model.SwapEventData, error) {
	var indexed struct {
		PoolId   [32]byte
		TokenIn  common.Address
		TokenOut common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.SwapEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	ints, err := bigInts(values, 2)
	if err != nil {
		return model.SwapEventData{}, fmt.Errorf("swap: %w", err)
	}
	return model.SwapEventData{
		PoolID:    common.Hash(indexed.PoolId).Hex(),
		TokenIn:   indexed.TokenIn.Hex(),
		TokenOut:  indexed.TokenOut.Hex(),
		AmountIn:  ints[0].String(),
		AmountOut: ints[1].String(),
	}, nil
}

func decodePoolBalanceChanged(event abi.Event, topics []common.Hash, values []interface{}) (model.PoolBalanceChangedEventData, error) {
	var indexed struct {
		PoolId            [32]byte
		LiquidityProvider common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	if len(values) != 3 {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("unexpected pool balance values: %d", len(values))
	}
	tokens, ok := values[0].([]common.Address)
	if !ok {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("unsupported tokens type %T", values[0])
	}
	deltas, ok := values[1].([]*big.Int)
	if !ok {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("unsupported deltas type %T", values[1])
	}
	fees, ok := values[2].([]*big.Int)
	if !ok {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("unsupported protocol fees type %T", values[2])
	}
	if len(deltas) != len(tokens) || len(fees) != len(tokens) {
		return model.PoolBalanceChangedEventData{}, fmt.Errorf("tokens, deltas and fees differ in length: %d/%d/%d", len(tokens), len(deltas), len(fees))
	}
	out := model.PoolBalanceChangedEventData{
		PoolID:             common.Hash(indexed.PoolId).Hex(),
		LiquidityProvider:  indexed.LiquidityProvider.Hex(),
		Tokens:             make([]string, len(tokens)),
		Deltas:             make([]string, len(tokens)),
		ProtocolFeeAmounts: make([]string, len(tokens)),
	}
	for i := range tokens {
		out.Tokens[i] = tokens[i].Hex()
		out.Deltas[i] = deltas[i].String()
		out.ProtocolFeeAmounts[i] = fees[i].String()
	}
	return out, nil
}

func decodePoolBalanceManaged(event abi.Event, topics []common.Hash, values []interface{}) (model.PoolBalanceManagedEventData, error) {
	var indexed struct {
		PoolId       [32]byte
		AssetManager common.Address
		Token        common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.PoolBalanceManagedEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	ints, err := bigInts(values, 2)
	if err != nil {
		return model.PoolBalanceManagedEventData{}, fmt.Errorf("pool balance managed: %w", err)
	}
	return model.PoolBalanceManagedEventData{
		PoolID:       common.Hash(indexed.PoolId).Hex(),
		AssetManager: indexed.AssetManager.Hex(),
		Token:        indexed.Token.Hex(),
		CashDelta:    ints[0].String(),
		ManagedDelta: ints[1].String(),
	}, nil
}

func decodeInternalBalanceChanged(event abi.Event, topics []common.Hash, values []interface{}) (model.InternalBalanceChangedEventData, error) {
	var indexed struct {
		User  common.Address
		Token common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.InternalBalanceChangedEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	ints, err := bigInts(values, 1)
	if err != nil {
		return model.InternalBalanceChangedEventData{}, fmt.Errorf("internal balance: %w", err)
	}
	return model.InternalBalanceChangedEventData{
		User:  indexed.User.Hex(),
		Token: indexed.Token.Hex(),
		Delta: ints[0].String(),
	}, nil
}

func decodeTransfer(event abi.Event, topics []common.Hash, values []interface{}) (model.TransferEventData, error) {
	var indexed struct {
		From common.Address
		To   common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.TransferEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	ints, err := bigInts(values, 1)
	if err != nil {
		return model.TransferEventData{}, fmt.Errorf("transfer: %w", err)
	}
	return model.TransferEventData{
		From:  indexed.From.Hex(),
		To:    indexed.To.Hex(),
		Value: ints[0].String(),
	}, nil
}

func decodeSwapFeeChanged(values []interface{}) (model.SwapFeePercentageChangedEventData, error) {
	ints, err := bigInts(values, 1)
	if err != nil {
		return model.SwapFeePercentageChangedEventData{}, fmt.Errorf("swap fee: %w", err)
	}
	return model.SwapFeePercentageChangedEventData{SwapFeePercentage: ints[0].String()}, nil
}

func decodeAmpUpdateStarted(values []interface{}) (model.AmpUpdateStartedEventData, error) {
	ints, err := bigInts(values, 4)
	if err != nil {
		return model.AmpUpdateStartedEventData{}, fmt.Errorf("amp update: %w", err)
	}
	return model.AmpUpdateStartedEventData{
		StartValue: ints[0].String(),
		EndValue:   ints[1].String(),
		StartTime:  ints[2].String(),
		EndTime:    ints[3].String(),
	}, nil
}

func decodeAmpUpdateStopped(values []interface{}) (model.AmpUpdateStoppedEventData, error) {
	ints, err := bigInts(values, 1)
	if err != nil {
		return model.AmpUpdateStoppedEventData{}, fmt.Errorf("amp stop: %w", err)
	}
	return model.AmpUpdateStoppedEventData{CurrentValue: ints[0].String()}, nil
}

func (d *VaultDecoder) decodePoolCreated(event abi.Event, factory common.Address, topics []common.Hash) (model.PoolCreatedEventData, error) {
	info, ok := d.cfg.Factories[factory]
	if !ok {
		return model.PoolCreatedEventData{}, fmt.Errorf("unknown factory %s", factory.Hex())
	}
	var indexed struct {
		Pool common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
		return model.PoolCreatedEventData{}, fmt.Errorf("parse topics: %w", err)
	}
	return model.PoolCreatedEventData{
		Pool:            indexed.Pool.Hex(),
		Factory:         strings.ToLower(factory.Hex()),
		PoolType:        info.Kind.String(),
		PoolTypeVersion: info.Version,
	}, nil
}

func bigInts(values []interface{}, want int) ([]*big.Int, error) {
	if len(values) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(values))
	}
	out := make([]*big.Int, len(values))
	for i, v := range values {
		n, err := asBigInt(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}
