package result

// TransactionVerbose is a result of the getrawtransaction RPC call with the
// verbose flag set.
type TransactionVerbose struct {
	TxID          string `json:"txid"`
	Hash          string `json:"hash"`
	Version       int32  `json:"version"`
	Size          int    `json:"size"`
	VSize         int    `json:"vsize"`
	LockTime      uint32 `json:"locktime"`
	Vin           []Vin  `json:"vin"`
	Vout          []Vout `json:"vout"`
	Hex           string `json:"hex"`
	BlockHash     string `json:"blockhash,omitempty"`
	Confirmations int64  `json:"confirmations,omitempty"`
	Time          int64  `json:"time,omitempty"`
	BlockTime     int64  `json:"blocktime,omitempty"`
}

// Vin is a transaction input. Coinbase is only set for coinbase inputs, all
// other fields are empty for them.
type Vin struct {
	TxID      string     `json:"txid,omitempty"`
	Vout      uint32     `json:"vout,omitempty"`
	ScriptSig *ScriptSig `json:"scriptSig,omitempty"`
	Coinbase  string     `json:"coinbase,omitempty"`
	Sequence  uint32     `json:"sequence"`
}

// ScriptSig is an unlocking script of a transaction input.
type ScriptSig struct {
	Asm string `json:"asm"`
	Hex string `json:"hex"`
}

// Vout is a transaction output.
type Vout struct {
	Value        float64      `json:"value"`
	N            uint32       `json:"n"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

// ScriptPubKey is a locking script of a transaction output. Asset is only
// present for outputs carrying Evrmore asset transfers.
type ScriptPubKey struct {
	Asm       string     `json:"asm"`
	Hex       string     `json:"hex"`
	ReqSigs   int        `json:"reqSigs,omitempty"`
	Type      string     `json:"type"`
	Addresses []string   `json:"addresses,omitempty"`
	Asset     *VoutAsset `json:"asset,omitempty"`
}

// VoutAsset describes an asset quantity moved by a transaction output.
type VoutAsset struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}
