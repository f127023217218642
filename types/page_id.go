package types

// PageID addresses a 4KiB page within one file. The page lives at
// byte offset PageID * PageSize.
type PageID uint64

// RecordID is the dense ascending identifier a column assigns at
// append time.
type RecordID uint64
