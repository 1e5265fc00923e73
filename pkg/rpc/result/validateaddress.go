package result

// ValidateAddress is a result of the validateaddress RPC call.
type ValidateAddress struct {
	IsValid      bool   `json:"isvalid"`
	Address      string `json:"address,omitempty"`
	ScriptPubKey string `json:"scriptPubKey,omitempty"`
	IsMine       bool   `json:"ismine,omitempty"`
	IsWatchOnly  bool   `json:"iswatchonly,omitempty"`
	IsScript     bool   `json:"isscript,omitempty"`
}
