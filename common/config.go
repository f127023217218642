package common

var EnableDebug bool = false

const (
	// size of a data page in byte
	PageSize = 4096
	// number of pages the buffer pool keeps resident
	BufferPoolSize = 1000
	// maximum children per B+ tree internal node
	BTreeOrder = 128
	// on-disk width of a string value
	StringWidth = 256
	// rows between buffer flushes during bulk insert
	BulkFlushInterval = 1000
)

var LogLevelSetting LogLevel = INFO | WARN | ERROR | FATAL
