package public

type status struct {
	Length     uint64 `json:"length"`
	LatestHash string `json:"latest_hash"`
	Difficulty uint   `json:"difficulty"`
	Scheme     string `json:"scheme"`
	Listeners  int    `json:"listeners"`
}

type account struct {
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
	Links     int    `json:"links"`
}
