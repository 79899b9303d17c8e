package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const vaultABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"indexed": true, "internalType": "contract IERC20", "name": "tokenIn", "type": "address"},
      {"indexed": true, "internalType": "contract IERC20", "name": "tokenOut", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"}
    ],
    "name": "Swap",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "liquidityProvider", "type": "address"},
      {"indexed": false, "internalType": "contract IERC20[]", "name": "tokens", "type": "address[]"},
      {"indexed": false, "internalType": "int256[]", "name": "deltas", "type": "int256[]"},
      {"indexed": false, "internalType": "uint256[]", "name": "protocolFeeAmounts", "type": "uint256[]"}
    ],
    "name": "PoolBalanceChanged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "assetManager", "type": "address"},
      {"indexed": true, "internalType": "contract IERC20", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "int256", "name": "cashDelta", "type": "int256"},
      {"indexed": false, "internalType": "int256", "name": "managedDelta", "type": "int256"}
    ],
    "name": "PoolBalanceManaged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": true, "internalType": "contract IERC20", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "int256", "name": "delta", "type": "int256"}
    ],
    "name": "InternalBalanceChanged",
    "type": "event"
  },
  {
    "inputs": [{"internalType": "bytes32", "name": "poolId", "type": "bytes32"}],
    "name": "getPoolTokens",
    "outputs": [
      {"internalType": "contract IERC20[]", "name": "tokens", "type": "address[]"},
      {"internalType": "uint256[]", "name": "balances", "type": "uint256[]"},
      {"internalType": "uint256", "name": "lastChangeBlock", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"internalType": "contract IERC20", "name": "token", "type": "address"}
    ],
    "name": "getPoolTokenInfo",
    "outputs": [
      {"internalType": "uint256", "name": "cash", "type": "uint256"},
      {"internalType": "uint256", "name": "managed", "type": "uint256"},
      {"internalType": "uint256", "name": "lastChangeBlock", "type": "uint256"},
      {"internalType": "address", "name": "assetManager", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const poolABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "swapFeePercentage", "type": "uint256"}
    ],
    "name": "SwapFeePercentageChanged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "startValue", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endValue", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"}
    ],
    "name": "AmpUpdateStarted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "currentValue", "type": "uint256"}
    ],
    "name": "AmpUpdateStopped",
    "type": "event"
  },
  {
    "inputs": [],
    "name": "getPoolId",
    "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getSwapFeePercentage",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getOwner",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getNormalizedWeights",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getAmplificationParameter",
    "outputs": [
      {"internalType": "uint256", "name": "value", "type": "uint256"},
      {"internalType": "bool", "name": "isUpdating", "type": "bool"},
      {"internalType": "uint256", "name": "precision", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const factoryABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "pool", "type": "address"}
    ],
    "name": "PoolCreated",
    "type": "event"
  }
]`

// Tokens that predate the string ABI return bytes32 for name and symbol.
const erc20StringABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const erc20Bytes32ABIJSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	src    string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.src))
	})
	return l.parsed, l.err
}

var (
	vaultABI        = &lazyABI{src: vaultABIJSON}
	poolABI         = &lazyABI{src: poolABIJSON}
	factoryABI      = &lazyABI{src: factoryABIJSON}
	erc20StringABI  = &lazyABI{src: erc20StringABIJSON}
	erc20Bytes32ABI = &lazyABI{src: erc20Bytes32ABIJSON}
)

// VaultABI returns the parsed vault ABI.
func VaultABI() (abi.ABI, error) { return vaultABI.get() }

// PoolABI returns the parsed ABI shared by vault pools.
func PoolABI() (abi.ABI, error) { return poolABI.get() }

// FactoryABI returns the parsed pool factory ABI.
func FactoryABI() (abi.ABI, error) { return factoryABI.get() }
