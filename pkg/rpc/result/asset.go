package result

// AssetData is a result of the getassetdata RPC call describing Evrmore
// asset metadata.
type AssetData struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Units       int     `json:"units"`
	Reissuable  int     `json:"reissuable"`
	HasIPFS     int     `json:"has_ipfs"`
	IPFSHash    string  `json:"ipfs_hash,omitempty"`
	BlockHeight int64   `json:"block_height,omitempty"`
	BlockHash   string  `json:"blockhash,omitempty"`
}
