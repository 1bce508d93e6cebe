package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func AttributeFormatToVulkan(format metadata.AttributeFormat) vk.Format {
	switch format {
	case metadata.AttributeFormatFloat:
		return vk.FormatR32Sfloat
	case metadata.AttributeFormatVec2:
		return vk.FormatR32g32Sfloat
	case metadata.AttributeFormatVec4:
		return vk.FormatR32g32b32a32Sfloat
	default:
		return vk.FormatR32g32b32Sfloat
	}
}

// VertexInputState builds the binding and attribute descriptions for a
// layout. One binding at index 0, per-vertex rate, locations in declaration
// order.
func VertexInputState(layout *metadata.VertexLayout) (vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    layout.Stride(),
		InputRate: vk.VertexInputRateVertex,
	}

	attributes := layout.Attributes()
	descriptions := make([]vk.VertexInputAttributeDescription, len(attributes))
	for i, attribute := range attributes {
		descriptions[i] = vk.VertexInputAttributeDescription{
			Binding:  0,
			Location: attribute.Location,
			Format:   AttributeFormatToVulkan(attribute.Format),
			Offset:   attribute.Offset,
		}
	}
	return binding, descriptions
}
