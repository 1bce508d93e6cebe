package vulkan

import "sync"

type LockGroup string

const (
	SamplerManagement         LockGroup = "sampler_management"
	CommandBufferManagement   LockGroup = "command_buffer_management"
	RenderpassManagement      LockGroup = "renderpass_management"
	BufferManagement          LockGroup = "buffer_management"
	ImageManagement           LockGroup = "image_management"
	DeviceManagement          LockGroup = "device_management"
	QueueManagement           LockGroup = "queue_management"
	PipelineManagement        LockGroup = "pipeline_management"
	MemoryManagement          LockGroup = "memory_management"
	ShaderManagement          LockGroup = "shader_management"
	SynchronizationManagement LockGroup = "synchronization_management"
	SwapchainManagement       LockGroup = "swapchain_management"
	InstanceManagement        LockGroup = "instance_management"
)

// Mutex pool serializing access to the shared Vulkan objects. By convention
// only one goroutine submits work, but the driver calls themselves are kept
// behind per-group locks.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create a mutex for a specific group.
func (vs *VulkanLockPool) setLock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	vs.locks[group].Lock()

	return vs.locks[group]
}

func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.setLock(group)
	defer l.Unlock()

	return fn()
}

var lockPool = NewVulkanLockPool()
