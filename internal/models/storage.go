package models

// Storage is the on-disk snapshot format.
type Storage struct {
	Chains   map[int64]*ChainRecord `json:"chains"`
	Settings map[string]string      `json:"settings"`
}
