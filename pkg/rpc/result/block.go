package result

// Block is a result of the getblock RPC call with verbosity 1, transactions
// are represented by their IDs only.
type Block struct {
	BlockHeader
	Tx []string `json:"tx"`
}

// BlockVerbose is a result of the getblock RPC call with verbosity 2, each
// transaction is expanded into a full TransactionVerbose.
type BlockVerbose struct {
	BlockHeader
	Tx []TransactionVerbose `json:"tx"`
}

// BlockHeader holds the transaction-independent part of a verbose block.
type BlockHeader struct {
	Hash              string  `json:"hash"`
	Confirmations     int64   `json:"confirmations"`
	Size              int     `json:"size"`
	StrippedSize      int     `json:"strippedsize"`
	Weight            int     `json:"weight"`
	Height            int64   `json:"height"`
	Version           int32   `json:"version"`
	VersionHex        string  `json:"versionHex"`
	MerkleRoot        string  `json:"merkleroot"`
	Time              int64   `json:"time"`
	MedianTime        int64   `json:"mediantime"`
	Nonce             uint64  `json:"nonce"`
	Bits              string  `json:"bits"`
	Difficulty        float64 `json:"difficulty"`
	ChainWork         string  `json:"chainwork"`
	PreviousBlockHash string  `json:"previousblockhash"`
	NextBlockHash     string  `json:"nextblockhash,omitempty"`
}
