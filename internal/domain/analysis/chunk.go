package analysis

const mib = 1024 * 1024

// Default chunk policy, sized under the provider's inline payload ceiling
const (
	DefaultMaxChunkSize int64 = 19 * mib
	DefaultOverlapSize  int64 = 5 * mib
)

// ByteRange is a half-open interval [Start, End)
type ByteRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of bytes in the range
func (r ByteRange) Len() int64 {
	return r.End - r.Start
}

// ChunkPlan is an ordered list of ranges covering a payload of TotalSize bytes
type ChunkPlan struct {
	TotalSize int64
	Ranges    []ByteRange
}

// Len returns the number of chunks
func (p ChunkPlan) Len() int {
	return len(p.Ranges)
}

// Position describes chunk i's place in the plan
func (p ChunkPlan) Position(i int) ChunkPosition {
	return ChunkPosition{
		Index: i,
		Total: len(p.Ranges),
		First: i == 0,
		Last:  i == len(p.Ranges)-1,
	}
}

// Slice returns the bytes of chunk i without copying
func (p ChunkPlan) Slice(data []byte, i int) []byte {
	r := p.Ranges[i]
	return data[r.Start:r.End]
}

// ChunkPosition tells the prompt builder where a chunk sits in the video
type ChunkPosition struct {
	Index int
	Total int
	First bool
	Last  bool
}

// WholeVideo is the position of an unchunked payload
var WholeVideo = ChunkPosition{Index: 0, Total: 1, First: true, Last: true}
