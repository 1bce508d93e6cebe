package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// VulkanMesh holds the device-local vertex and index buffers of an uploaded
// mesh plus the submesh table used to issue per-material draws.
type VulkanMesh struct {
	Name         string
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	VertexCount  uint32
	IndexCount   uint32
	SubMeshes    []metadata.SubMesh
	Extents      math.Extents3D
}

// MeshUpload interleaves the source vertices according to layout and stages
// both streams into device-local buffers.
func MeshUpload(context *VulkanContext, source *metadata.MeshSource, layout *metadata.VertexLayout) (*VulkanMesh, error) {
	if len(source.Vertices) == 0 {
		return nil, fmt.Errorf("mesh '%s' has no vertices", source.Name)
	}
	if len(source.Indices) == 0 {
		return nil, fmt.Errorf("mesh '%s' has no indices", source.Name)
	}

	interleaved := metadata.Interleave(layout, source.Vertices)

	vertexBuffer, err := StageToDeviceBuffer(context,
		context.Device.GraphicsCommandPool, context.Device.GraphicsQueue,
		vk.BufferUsageVertexBufferBit, float32SliceToBytes(interleaved))
	if err != nil {
		return nil, fmt.Errorf("failed to upload vertex buffer for mesh '%s': %w", source.Name, err)
	}

	indexBuffer, err := StageToDeviceBuffer(context,
		context.Device.GraphicsCommandPool, context.Device.GraphicsQueue,
		vk.BufferUsageIndexBufferBit, uint32SliceToBytes(source.Indices))
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, fmt.Errorf("failed to upload index buffer for mesh '%s': %w", source.Name, err)
	}

	core.LogInfo("mesh '%s' uploaded: %d vertices, %d indices, %d submeshes",
		source.Name, len(source.Vertices), len(source.Indices), len(source.SubMeshes))

	return &VulkanMesh{
		Name:         source.Name,
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		VertexCount:  uint32(len(source.Vertices)),
		IndexCount:   uint32(len(source.Indices)),
		SubMeshes:    append([]metadata.SubMesh(nil), source.SubMeshes...),
		Extents:      source.Extents,
	}, nil
}

// Draw binds the buffers and issues one indexed draw per submesh.
func (m *VulkanMesh) Draw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{m.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, m.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
	if len(m.SubMeshes) == 0 {
		vk.CmdDrawIndexed(commandBuffer.Handle, m.IndexCount, 1, 0, 0, 0)
		return
	}
	for _, sub := range m.SubMeshes {
		vk.CmdDrawIndexed(commandBuffer.Handle, sub.IndexCount, 1, sub.IndexBase, int32(sub.VertexBase), 0)
	}
}

func (m *VulkanMesh) Destroy(context *VulkanContext) {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
}

func float32SliceToBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func uint32SliceToBytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}
