// Package catalog holds the static, process-lifetime tables of JSON-RPC
// request bodies used to drive load against BTC and EVM endpoints. Each
// entry pairs a literal request body with a relative weight approximating
// the method-call mix observed on a typical public node.
package catalog

import "github.com/omniaprotocol/node-benchmarking-service/model"

// Entry is one immutable (payload, weight) pair. Payload is shared by
// reference across every stream that draws it; callers must never mutate
// the returned byte slice.
type Entry struct {
	Method  string
	Payload []byte
	Weight  uint32
}

// For selects the table for a given chain. Both returned slices are
// process-lifetime constants; callers must not mutate them.
func For(chain model.Chain) []Entry {
	if chain == model.ChainBTC {
		return BTC
	}
	return EVM
}

// BTC is the Bitcoin-family payload table: five entries covering a send, a
// diagnostic call, and three read methods, read-heavy methods weighted
// highest.
var BTC = []Entry{
	{
		Method: "sendrawtransaction",
		Weight: 16,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": "1",
			"method": "sendrawtransaction",
			"params": ["01000000010b4d12cf890540c116463510fa823188a648ce7539b6a9ceb454bfbe8da447d7230000006b48304502210095d4cf3d7dcffaf50354ad3fd6e909e6c81156ac8f26b4a972c178e1c6b886b802206c6d3287d2a1bd9aa9f16187bf49ec24581d2b471e222d24babfd511d83bf29601210242581ee416579a142b436a2ef5ef0e117941fe7a2998d2d34c9f476233080f48ffffffff02a6580100000000001976a91476c37e0cc46f856092164f2fad78dbfc7de8c87e88ac3fc30f000000000017a91422603b24d6bc97d390793ec58de38222fcccae328700000000"]
		}`),
	},
	{
		Method: "logging",
		Weight: 252,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": "1",
			"method": "logging",
			"params": [["all"], ["libevent"]]
		}`),
	},
	{
		Method: "gettxout",
		Weight: 255,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": "1",
			"method": "gettxout",
			"params": ["47df2d439a7f7156da11a01478ea921c9fabc0f55a9f901291dccc762b40a937", 1]
		}`),
	},
	{
		Method: "getblock",
		Weight: 333,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": "1",
			"method": "getblock",
			"params": ["00000000c937983704a73af28acdec37b049d214adbda81d7e2a3dd146f6ed09"]
		}`),
	},
	{
		Method: "getblockstats",
		Weight: 390,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": "1",
			"method": "getblockstats",
			"params": [103221, []]
		}`),
	},
}

// EVM is the Ethereum-family payload table: ten entries, read-heavy methods
// (eth_call, eth_getTransactionReceipt, eth_getBalance) weighted far above
// the single mutating method (eth_sendRawTransaction).
var EVM = []Entry{
	{
		Method: "eth_sendRawTransaction",
		Weight: 16,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_sendRawTransaction",
			"params": ["0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"]
		}`),
	},
	{
		Method: "eth_getCode",
		Weight: 88,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getCode",
			"params": ["0x5B56438000bAc5ed2c6E0c1EcFF4354aBfFaf889","latest"]
		}`),
	},
	{
		Method: "eth_getLogs",
		Weight: 252,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getLogs",
			"params": [{"address": "0xdAC17F958D2ee523a2206206994597C13D831ec7"}]
		}`),
	},
	{
		Method: "eth_getTransactionByHash",
		Weight: 255,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getTransactionByHash",
			"params": ["0x04b713fdbbf14d4712df5ccc7bb3dfb102ac28b99872506a363c0dcc0ce4343c"]
		}`),
	},
	{
		Method: "eth_blockNumber",
		Weight: 333,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_blockNumber",
			"params": []
		}`),
	},
	{
		Method: "eth_getTransactionCount",
		Weight: 390,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getTransactionCount",
			"params": ["0x8D97689C9818892B700e27F316cc3E41e17fBeb9", "latest"]
		}`),
	},
	{
		Method: "eth_getBlockByNumber",
		Weight: 399,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getBlockByNumber",
			"params": ["0xc5043f",false]
		}`),
	},
	{
		Method: "eth_getBalance",
		Weight: 545,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getBalance",
			"params": ["0x8D97689C9818892B700e27F316cc3E41e17fBeb9", "latest"]
		}`),
	},
	{
		Method: "eth_getTransactionReceipt",
		Weight: 607,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_getTransactionReceipt",
			"params": ["0x04b713fdbbf14d4712df5ccc7bb3dfb102ac28b99872506a363c0dcc0ce4343c"]
		}`),
	},
	{
		Method: "eth_call",
		Weight: 1928,
		Payload: []byte(`{
			"jsonrpc": "2.0",
			"id": 1,
			"method": "eth_call",
			"params": [{"from":null,"to":"0x6b175474e89094c44da98b954eedeac495271d0f","data":"0x70a082310000000000000000000000006E0d01A76C3Cf4288372a29124A26D4353EE51BE"}, "latest"]
		}`),
	},
}
