package test_util

import (
	"github.com/kfujita/HibariDB/storage/buffer"
	"github.com/kfujita/HibariDB/storage/disk"
)

// HibariInstance wires an in-memory disk manager to a buffer pool so
// storage-level tests can run hermetically
type HibariInstance struct {
	diskManager disk.DiskManager
	bpm         *buffer.BufferPoolManager
}

func NewHibariInstance(poolSize uint32) *HibariInstance {
	diskManager := disk.NewDiskManagerTest()
	bpm := buffer.NewBufferPoolManager(poolSize, diskManager)
	return &HibariInstance{diskManager, bpm}
}

func (hi *HibariInstance) GetDiskManager() disk.DiskManager {
	return hi.diskManager
}

func (hi *HibariInstance) GetBufferPoolManager() *buffer.BufferPoolManager {
	return hi.bpm
}

func (hi *HibariInstance) Finalize() {
	hi.diskManager.ShutDown()
}
