package model

// NumberSequence is a named monotonic counter used for application and permit
// number generation. One row per scope, where a scope is a document kind plus
// a calendar month (e.g. "basvuru:202608"). Counters are reserved with an
// atomic in-place increment so concurrent creators can never observe the same
// value.
type NumberSequence struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Scope string `gorm:"column:scope;type:varchar(30);uniqueIndex;not null" json:"scope"`
	Value int64  `gorm:"column:value;not null;default:0" json:"value"`
}

func (NumberSequence) TableName() string {
	return "numara_serileri"
}
