package models

// ArchiveInterface is the cold store for finished chains that aged out of
// the hot snapshot. Implemented in the chain package.
type ArchiveInterface interface {
	Has(id int64) bool
	Get(id int64) (*ChainRecord, bool)
	Ids() []int64
	Store(rec *ChainRecord) error
}
