package result

// NetworkInfo is a result of the getnetworkinfo RPC call.
type NetworkInfo struct {
	Version         int64   `json:"version"`
	Subversion      string  `json:"subversion"`
	ProtocolVersion int64   `json:"protocolversion"`
	LocalServices   string  `json:"localservices"`
	LocalRelay      bool    `json:"localrelay"`
	TimeOffset      int64   `json:"timeoffset"`
	NetworkActive   bool    `json:"networkactive"`
	Connections     int     `json:"connections"`
	RelayFee        float64 `json:"relayfee"`
	Warnings        string  `json:"warnings"`
}

// MempoolInfo is a result of the getmempoolinfo RPC call.
type MempoolInfo struct {
	Size          int64   `json:"size"`
	Bytes         int64   `json:"bytes"`
	Usage         int64   `json:"usage"`
	MaxMempool    int64   `json:"maxmempool"`
	MempoolMinFee float64 `json:"mempoolminfee"`
}
