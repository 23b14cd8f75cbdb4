package constants

// SIGNATURE_CHAIN_ID is the EVM chain id embedded in the
// HyperliquidSignTransaction EIP-712 domain. The same id is used for
// mainnet and testnet; the network is carried by the hyperliquidChain
// field of the signed payload instead.
const SIGNATURE_CHAIN_ID = 421614

// L1_CHAIN_ID is the fixed chain id of the Exchange domain used for
// L1 agent signatures.
const L1_CHAIN_ID = 1337

const MAINNET_CHAIN_NAME = "Mainnet"
const TESTNET_CHAIN_NAME = "Testnet"

const ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
