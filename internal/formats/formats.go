package formats

// Format identifies a DXGI pixel format understood by texconv's -f flag.
type Format string

// DefaultFormat is used whenever a filename carries no suffix or the suffix
// has no mapping in the active profile.
const DefaultFormat = Format("BC7_UNORM")

// All lists every format the tool accepts, in the order they are presented
// to the user. The set mirrors the identifiers texconv accepts for -f.
var All = []Format{
	"BC1_UNORM",
	"BC1_UNORM_SRGB",
	"BC2_UNORM",
	"BC2_UNORM_SRGB",
	"BC3_UNORM",
	"BC3_UNORM_SRGB",
	"BC4_UNORM",
	"BC4_SNORM",
	"BC5_UNORM",
	"BC5_SNORM",
	"BC6H_UF16",
	"BC6H_SF16",
	"BC7_UNORM",
	"BC7_UNORM_SRGB",
	"R8G8B8A8_UNORM",
	"R8G8B8A8_UNORM_SRGB",
	"R8G8B8A8_SNORM",
	"R8G8B8A8_UINT",
	"R8G8B8A8_SINT",
	"B8G8R8A8_UNORM",
	"B8G8R8A8_UNORM_SRGB",
	"B8G8R8X8_UNORM",
	"B8G8R8X8_UNORM_SRGB",
	"R16G16B16A16_FLOAT",
	"R16G16B16A16_UNORM",
	"R16G16B16A16_SNORM",
	"R16G16B16A16_UINT",
	"R16G16B16A16_SINT",
	"R32G32B32A32_FLOAT",
	"R32G32B32A32_UINT",
	"R32G32B32A32_SINT",
	"R32G32B32_FLOAT",
	"R32G32_FLOAT",
	"R16G16_FLOAT",
	"R16G16_UNORM",
	"R16G16_SNORM",
	"R10G10B10A2_UNORM",
	"R11G11B10_FLOAT",
	"R9G9B9E5_SHAREDEXP",
	"R8G8_UNORM",
	"R8G8_SNORM",
	"R8_UNORM",
	"R8_SNORM",
	"R8_UINT",
	"A8_UNORM",
	"R16_FLOAT",
	"R16_UNORM",
	"R16_SNORM",
	"R32_FLOAT",
	"R32_UINT",
	"B5G6R5_UNORM",
	"B5G5R5A1_UNORM",
}

var valid = func() map[Format]struct{} {
	m := make(map[Format]struct{}, len(All))
	for _, f := range All {
		m[f] = struct{}{}
	}
	return m
}()

// Valid reports whether s names a known format.
func Valid(s string) bool {
	_, ok := valid[Format(s)]
	return ok
}

func (f Format) String() string {
	return string(f)
}
