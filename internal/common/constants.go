package common

import "strconv"

// ChainID represents supported network chain IDs as an enum type
type ChainID uint64

const (
	EthereumMainnet ChainID = 1
	Optimism        ChainID = 10
	BSC             ChainID = 56
	Polygon         ChainID = 137
	Mantle          ChainID = 5000
	Base            ChainID = 8453
	ArbitrumOne     ChainID = 42161
	Berachain       ChainID = 80094
)

var chainNames = map[ChainID]string{
	EthereumMainnet: "ethereum",
	Optimism:        "optimism",
	BSC:             "bsc",
	Polygon:         "polygon",
	Mantle:          "mantle",
	Base:            "base",
	ArbitrumOne:     "arbitrum",
	Berachain:       "berachain",
}

// String returns the network name, or the bare number for unknown chains.
func (c ChainID) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return strconv.FormatUint(uint64(c), 10)
}

// Known reports whether the chain is one of the named networks.
func (c ChainID) Known() bool {
	_, ok := chainNames[c]
	return ok
}
